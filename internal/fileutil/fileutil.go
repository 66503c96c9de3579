// Package fileutil holds the file operations the downloader performs on its
// output directory: atomic-ish replacement, prefix lookup, and newest-file
// discovery.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"vidmerge/internal/textutil"
)

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	return CopyFileMode(src, dst, 0o644)
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// ReplaceFile moves src over dst: dst is deleted first, then src renamed into
// its place. When the rename fails (for example across devices) the content
// is copied and src removed.
func ReplaceFile(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("stat replacement: %w", err)
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove original: %w", err)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := CopyFile(src, dst); err != nil {
		return fmt.Errorf("copy replacement: %w", err)
	}
	return os.Remove(src)
}

// RemoveIfExists deletes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// FindByPrefix returns the regular files in dir whose names start with
// prefix, sorted by name. Matching is literal after NFC normalization.
func FindByPrefix(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var matches []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if textutil.HasNamePrefix(entry.Name(), prefix) {
			matches = append(matches, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(matches)
	return matches, nil
}

// NewestWithExt returns the file in dir with extension ext (case-insensitive,
// including the dot) that has the latest creation time. A file named
// tempPrefix+name is ignored when name exists alongside it, so in-progress
// siblings lose while a title that merely starts with tempPrefix still
// counts. It returns fs.ErrNotExist when nothing matches.
func NewestWithExt(dir, ext, tempPrefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	names := make(map[string]bool, len(entries))
	for _, entry := range entries {
		names[entry.Name()] = true
	}
	var (
		newest     string
		newestTime time.Time
	)
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		if tempPrefix != "" {
			if base, ok := strings.CutPrefix(entry.Name(), tempPrefix); ok && names[base] {
				continue
			}
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		created := CreationTime(path, info)
		if newest == "" || created.After(newestTime) {
			newest = path
			newestTime = created
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no %s file in %s: %w", ext, dir, fs.ErrNotExist)
	}
	return newest, nil
}

// Size returns the size of path in bytes, or -1 when it cannot be read.
func Size(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}
