package fileutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	write(t, src, "hello world")

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Fatalf("content mismatch: got %q", got)
	}
}

func TestCopyFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyFile(filepath.Join(dir, "nope"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestReplaceFile(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "clip.mp4")
	temp := filepath.Join(dir, "temp_clip.mp4")
	write(t, original, "old")
	write(t, temp, "new")

	if err := ReplaceFile(temp, original); err != nil {
		t.Fatalf("ReplaceFile: %v", err)
	}
	got, err := os.ReadFile(original)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("expected replacement content, got %q", got)
	}
	if _, err := os.Stat(temp); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected temp to be gone, stat err=%v", err)
	}
}

func TestReplaceFileMissingSourceKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "clip.mp4")
	write(t, original, "old")

	if err := ReplaceFile(filepath.Join(dir, "temp_clip.mp4"), original); err == nil {
		t.Fatal("expected error for missing replacement")
	}
	if got, _ := os.ReadFile(original); string(got) != "old" {
		t.Fatalf("original must survive, got %q", got)
	}
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x")
	write(t, path, "x")
	if err := RemoveIfExists(path); err != nil {
		t.Fatal(err)
	}
	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("second removal should be a no-op, got %v", err)
	}
}

func TestFindByPrefix(t *testing.T) {
	dir := t.TempDir()
	title := "Song [Live] *2024*"
	write(t, filepath.Join(dir, title+".video.webm"), "v")
	write(t, filepath.Join(dir, title+".audio.m4a"), "a")
	write(t, filepath.Join(dir, "Song [Live] X.video.webm"), "other")
	if err := os.Mkdir(filepath.Join(dir, title+".video.dir"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindByPrefix(dir, title+".video.")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != title+".video.webm" {
		t.Fatalf("unexpected matches %v", got)
	}

	none, err := FindByPrefix(dir, "Missing.video.")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no matches, got %v (%v)", none, err)
	}
}

func TestNewestWithExt(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "older.mp4"), "1")
	time.Sleep(50 * time.Millisecond)
	write(t, filepath.Join(dir, "newer.MP4"), "2")
	time.Sleep(50 * time.Millisecond)
	write(t, filepath.Join(dir, "temp_newer.MP4"), "3")
	write(t, filepath.Join(dir, "notes.txt"), "x")

	got, err := NewestWithExt(dir, ".mp4", "temp_")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "newer.MP4" {
		t.Fatalf("expected newer.MP4, got %s", got)
	}
}

func TestNewestWithExtAcceptsTitlesStartingWithTempPrefix(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "older.mp4"), "1")
	time.Sleep(50 * time.Millisecond)
	write(t, filepath.Join(dir, "temp_files explained.mp4"), "2")

	got, err := NewestWithExt(dir, ".mp4", "temp_")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "temp_files explained.mp4" {
		t.Fatalf("expected the temp_-titled video, got %s", got)
	}
}

func TestNewestWithExtEmpty(t *testing.T) {
	if _, err := NewestWithExt(t.TempDir(), ".mp4", ""); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	write(t, path, "12345")
	if Size(path) != 5 {
		t.Fatalf("unexpected size %d", Size(path))
	}
	if Size(filepath.Join(dir, "absent")) != -1 {
		t.Fatal("expected -1 for missing file")
	}
}
