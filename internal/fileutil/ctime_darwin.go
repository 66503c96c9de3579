//go:build darwin

package fileutil

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// CreationTime returns the file's birth time.
func CreationTime(path string, info os.FileInfo) time.Time {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err == nil {
		return time.Unix(st.Birthtimespec.Unix())
	}
	return info.ModTime()
}
