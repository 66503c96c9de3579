package deps

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"vidmerge/internal/logging"
)

// Source identifies which lookup tier located an executable.
type Source string

const (
	SourceNone          Source = ""
	SourceConfigured    Source = "configured"
	SourcePath          Source = "path"
	SourceKnownLocation Source = "known_location"
	SourceYtDlpDir      Source = "yt_dlp_dir"
	SourceExecutableDir Source = "executable_dir"
	SourceProvisioned   Source = "provisioned"
)

// ProvisionFunc asks yt-dlp to fetch its bundled post-processing tools,
// writing any scratch output below dir.
type ProvisionFunc func(ctx context.Context, dir string) error

// FFmpegLocator walks the ffmpeg lookup ladder. Zero values fall back to the
// platform defaults, so callers normally only set YtDlpPath.
type FFmpegLocator struct {
	// Configured is an explicit path from configuration, tried first.
	Configured string
	// YtDlpPath is the resolved yt-dlp executable; its directory is probed
	// for a sidecar ffmpeg.
	YtDlpPath string
	// Locations overrides the fixed install locations. A non-nil empty slice
	// disables them.
	Locations []string
	// ExecutablePath reports the running binary. Defaults to os.Executable.
	ExecutablePath func() (string, error)
	// Provision, when set, is invoked once as the last resort.
	Provision ProvisionFunc
	Logger    *slog.Logger
}

// DefaultFFmpegLocations lists well-known install paths for the platform.
func DefaultFFmpegLocations() []string {
	if runtime.GOOS == "windows" {
		return []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files (x86)\ffmpeg\bin\ffmpeg.exe`,
		}
	}
	return []string{
		"/usr/local/bin/ffmpeg",
		"/usr/bin/ffmpeg",
		"/opt/homebrew/bin/ffmpeg",
		"/snap/bin/ffmpeg",
	}
}

// Locate resolves ffmpeg. It never fails: an unresolved binary is reported
// through Status.Available so callers can degrade to unmerged downloads.
func (l FFmpegLocator) Locate(ctx context.Context) Status {
	logger := l.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	status := Status{
		Name:        "FFmpeg",
		Description: "Merges separately downloaded streams and re-encodes audio",
		Optional:    true,
	}

	if path, source, ok := l.probe(); ok {
		status.Command, status.Source, status.Available = path, source, true
		return status
	}

	if l.Provision != nil && l.YtDlpPath != "" {
		dir := filepath.Join(filepath.Dir(l.YtDlpPath), "ffmpeg")
		logger.Info("ffmpeg not found, asking yt-dlp to provision it", logging.String("dir", dir))
		if err := l.Provision(ctx, dir); err != nil {
			// The outcome is ignored; the re-probe decides.
			logger.Debug("provisioning run failed", logging.Error(err))
		}
		if path, err := exec.LookPath("ffmpeg"); err == nil {
			status.Command, status.Source, status.Available = path, SourceProvisioned, true
			return status
		}
		if path, ok := sidecar(l.YtDlpPath); ok {
			status.Command, status.Source, status.Available = path, SourceProvisioned, true
			return status
		}
	}

	status.Command = "ffmpeg"
	status.Detail = fmt.Sprintf("binary %q not found", "ffmpeg")
	return status
}

// probe checks every tier except provisioning.
func (l FFmpegLocator) probe() (string, Source, bool) {
	if configured := strings.TrimSpace(l.Configured); configured != "" {
		if path, _, err := locate(configured); err == nil {
			return path, SourceConfigured, true
		}
	}
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return path, SourcePath, true
	}
	locations := l.Locations
	if locations == nil {
		locations = DefaultFFmpegLocations()
	}
	for _, candidate := range locations {
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			return candidate, SourceKnownLocation, true
		}
	}
	if path, ok := sidecar(l.YtDlpPath); ok {
		return path, SourceYtDlpDir, true
	}
	executable := l.ExecutablePath
	if executable == nil {
		executable = os.Executable
	}
	if self, err := executable(); err == nil {
		if path, ok := sidecar(self); ok {
			return path, SourceExecutableDir, true
		}
	}
	return "", SourceNone, false
}

// sidecar reports an ffmpeg executable sitting next to neighbour.
func sidecar(neighbour string) (string, bool) {
	if strings.TrimSpace(neighbour) == "" {
		return "", false
	}
	candidate := filepath.Join(filepath.Dir(neighbour), executableName("ffmpeg"))
	info, err := os.Stat(candidate)
	if err != nil || !isExecutable(info) {
		return "", false
	}
	return candidate, true
}
