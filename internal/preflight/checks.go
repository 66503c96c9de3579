package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"vidmerge/internal/config"
	"vidmerge/internal/deps"
	"vidmerge/internal/procexec"
	"vidmerge/internal/services/ffmpeg"
	"vidmerge/internal/services/ytdlp"
)

const versionTimeout = 10 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutputDirectory is CheckDirectoryAccess for directories that runs
// create on demand: a missing directory passes when its nearest existing
// ancestor is writable.
func CheckOutputDirectory(name, path string) Result {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	ancestor := CheckDirectoryAccess(name, parent)
	if !ancestor.Passed {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot be created under %s)", path, parent)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckSystemDeps resolves yt-dlp and ffmpeg the way a run would, minus
// auto-provisioning, and fills Detail with each available tool's version.
func CheckSystemDeps(ctx context.Context, cfg *config.Config, exec procexec.Executor) []deps.Status {
	if exec == nil {
		exec = procexec.CommandExecutor{}
	}
	statuses := deps.CheckBinaries([]deps.Requirement{{
		Name:        "yt-dlp",
		Command:     cfg.Tools.YtDlpPath,
		Description: "Required for downloading",
	}})
	ytStatus := &statuses[0]
	if ytStatus.Available {
		if client, err := ytdlp.New(ytStatus.Command, ytdlp.WithExecutor(exec)); err == nil {
			ytStatus.Detail = version(ctx, client.Version)
		}
	}

	locator := deps.FFmpegLocator{
		Configured: cfg.Tools.FFmpegPath,
		YtDlpPath:  ytStatus.Command,
	}
	if !ytStatus.Available {
		locator.YtDlpPath = ""
	}
	ffStatus := locator.Locate(ctx)
	if ffStatus.Available {
		if client, err := ffmpeg.New(ffStatus.Command, ffmpeg.WithExecutor(exec)); err == nil {
			ffStatus.Detail = version(ctx, client.Version)
		}
	}
	return append(statuses, ffStatus)
}

func version(ctx context.Context, probe func(context.Context) (string, error)) string {
	probeCtx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	v, err := probe(probeCtx)
	if err != nil {
		return "version unknown"
	}
	return v
}
