package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeStub(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

// isolatedLocator returns a locator that cannot see system installs.
func isolatedLocator(ytDlp string) FFmpegLocator {
	return FFmpegLocator{
		YtDlpPath:      ytDlp,
		Locations:      []string{},
		ExecutablePath: func() (string, error) { return "", errors.New("unknown") },
	}
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	writeStub(t, present)
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Source != SourceConfigured {
		t.Fatalf("expected configured source, got %q", results[0].Source)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}
}

func TestResolveExecutable(t *testing.T) {
	binDir := t.TempDir()
	tool := filepath.Join(binDir, executableName("yt-dlp"))
	writeStub(t, tool)
	t.Setenv("PATH", binDir)

	got, err := ResolveExecutable("yt-dlp")
	if err != nil || got != tool {
		t.Fatalf("ResolveExecutable(bare) = %q, %v", got, err)
	}
	got, err = ResolveExecutable(tool)
	if err != nil || got != tool {
		t.Fatalf("ResolveExecutable(path) = %q, %v", got, err)
	}
	_, err = ResolveExecutable(filepath.Join(binDir, "absent", "yt-dlp"))
	if !errors.Is(err, ErrExecutableMissing) {
		t.Fatalf("expected ErrExecutableMissing, got %v", err)
	}
}

func TestLocatePrefersConfiguredPath(t *testing.T) {
	tmp := t.TempDir()
	configured := filepath.Join(tmp, "custom", executableName("ffmpeg"))
	writeStub(t, configured)
	onPath := filepath.Join(tmp, "bin", executableName("ffmpeg"))
	writeStub(t, onPath)
	t.Setenv("PATH", filepath.Dir(onPath))

	locator := isolatedLocator("")
	locator.Configured = configured
	status := locator.Locate(context.Background())
	if !status.Available || status.Command != configured || status.Source != SourceConfigured {
		t.Fatalf("unexpected status %#v", status)
	}
}

func TestLocatePathBeforeSidecar(t *testing.T) {
	tmp := t.TempDir()
	ytDlp := filepath.Join(tmp, "tools", executableName("yt-dlp"))
	writeStub(t, ytDlp)
	writeStub(t, filepath.Join(tmp, "tools", executableName("ffmpeg")))
	onPath := filepath.Join(tmp, "bin", executableName("ffmpeg"))
	writeStub(t, onPath)
	t.Setenv("PATH", filepath.Dir(onPath))

	status := isolatedLocator(ytDlp).Locate(context.Background())
	if status.Command != onPath || status.Source != SourcePath {
		t.Fatalf("expected PATH hit, got %#v", status)
	}
}

func TestLocateKnownLocation(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("PATH", "")
	known := filepath.Join(tmp, "opt", executableName("ffmpeg"))
	writeStub(t, known)

	locator := isolatedLocator("")
	locator.Locations = []string{filepath.Join(tmp, "missing", "ffmpeg"), known}
	status := locator.Locate(context.Background())
	if status.Command != known || status.Source != SourceKnownLocation {
		t.Fatalf("expected known location, got %#v", status)
	}
}

func TestLocateYtDlpSidecar(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("PATH", "")
	ytDlp := filepath.Join(tmp, executableName("yt-dlp"))
	ffmpeg := filepath.Join(tmp, executableName("ffmpeg"))
	writeStub(t, ytDlp)
	writeStub(t, ffmpeg)

	status := isolatedLocator(ytDlp).Locate(context.Background())
	if !status.Available || status.Command != ffmpeg || status.Source != SourceYtDlpDir {
		t.Fatalf("expected yt-dlp sidecar, got %#v", status)
	}
}

func TestLocateExecutableSidecar(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("PATH", "")
	self := filepath.Join(tmp, "app", executableName("vidmerge"))
	ffmpeg := filepath.Join(tmp, "app", executableName("ffmpeg"))
	writeStub(t, self)
	writeStub(t, ffmpeg)

	locator := isolatedLocator(filepath.Join(tmp, "elsewhere", "yt-dlp"))
	locator.ExecutablePath = func() (string, error) { return self, nil }
	status := locator.Locate(context.Background())
	if status.Command != ffmpeg || status.Source != SourceExecutableDir {
		t.Fatalf("expected executable sidecar, got %#v", status)
	}
}

func TestLocateProvisionsAsLastResort(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("provision stub writes a POSIX binary name")
	}
	tmp := t.TempDir()
	binDir := filepath.Join(tmp, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Setenv("PATH", binDir)
	ytDlp := filepath.Join(tmp, "tools", "yt-dlp")
	writeStub(t, ytDlp)

	var gotDir string
	locator := isolatedLocator(ytDlp)
	locator.Provision = func(ctx context.Context, dir string) error {
		gotDir = dir
		writeStub(t, filepath.Join(binDir, "ffmpeg"))
		return errors.New("provision exit 1")
	}
	status := locator.Locate(context.Background())
	if gotDir != filepath.Join(tmp, "tools", "ffmpeg") {
		t.Fatalf("unexpected provision dir %q", gotDir)
	}
	if !status.Available || status.Source != SourceProvisioned {
		t.Fatalf("expected provisioned ffmpeg, got %#v", status)
	}
}

func TestLocateNotFound(t *testing.T) {
	t.Setenv("PATH", "")
	calls := 0
	locator := isolatedLocator(filepath.Join(t.TempDir(), "yt-dlp"))
	locator.Provision = func(ctx context.Context, dir string) error {
		calls++
		return nil
	}
	status := locator.Locate(context.Background())
	if status.Available {
		t.Fatal("expected ffmpeg resolution to fail")
	}
	if status.Detail == "" {
		t.Fatal("expected detail message when ffmpeg is unavailable")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one provisioning attempt, got %d", calls)
	}
}

func TestLocateSkipsProvisionWhenFound(t *testing.T) {
	tmp := t.TempDir()
	ffmpeg := filepath.Join(tmp, executableName("ffmpeg"))
	writeStub(t, ffmpeg)
	t.Setenv("PATH", tmp)

	locator := isolatedLocator("")
	locator.Provision = func(ctx context.Context, dir string) error {
		t.Fatal("provision must not run when ffmpeg is found")
		return nil
	}
	if status := locator.Locate(context.Background()); !status.Available {
		t.Fatalf("expected ffmpeg on PATH, got %#v", status)
	}
}
