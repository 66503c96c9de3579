//go:build linux

package fileutil

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// CreationTime approximates creation with the inode change time, the closest
// timestamp every Linux file system exposes.
func CreationTime(path string, info os.FileInfo) time.Time {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err == nil {
		return time.Unix(st.Ctim.Unix())
	}
	return info.ModTime()
}
