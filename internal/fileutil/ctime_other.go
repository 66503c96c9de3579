//go:build !linux && !darwin

package fileutil

import (
	"os"
	"time"
)

// CreationTime falls back to the modification time.
func CreationTime(path string, info os.FileInfo) time.Time {
	return info.ModTime()
}
