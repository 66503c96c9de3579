package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize(env environment) error {
	if err := c.normalizePaths(env); err != nil {
		return err
	}
	if err := c.normalizeTools(env); err != nil {
		return err
	}
	c.normalizeDownload()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths(env environment) error {
	var err error
	c.Paths.OutputDir = strings.TrimSpace(env.expand(c.Paths.OutputDir))
	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	c.Paths.StateDir = strings.TrimSpace(env.expand(c.Paths.StateDir))
	if c.Paths.StateDir == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools(env environment) error {
	var err error
	c.Tools.YtDlpPath = strings.TrimSpace(env.expand(c.Tools.YtDlpPath))
	if c.Tools.YtDlpPath == "" {
		c.Tools.YtDlpPath = defaultYtDlpPath
	}
	if c.Tools.YtDlpPath, err = expandExecutable(c.Tools.YtDlpPath); err != nil {
		return fmt.Errorf("tools.yt_dlp_path: %w", err)
	}
	c.Tools.FFmpegPath = strings.TrimSpace(env.expand(c.Tools.FFmpegPath))
	if c.Tools.FFmpegPath != "" {
		if c.Tools.FFmpegPath, err = expandExecutable(c.Tools.FFmpegPath); err != nil {
			return fmt.Errorf("tools.ffmpeg_path: %w", err)
		}
	}
	c.Tools.ProvisionURL = strings.TrimSpace(c.Tools.ProvisionURL)
	if c.Tools.ProvisionURL == "" {
		c.Tools.ProvisionURL = defaultProvisionURL
	}
	return nil
}

// expandExecutable leaves bare command names alone so they can be resolved
// through PATH later, and expands anything that looks like a filesystem path.
func expandExecutable(value string) (string, error) {
	if !IsPathLike(value) {
		return value, nil
	}
	return expandPath(value)
}

// IsPathLike reports whether value names a filesystem location rather than a
// bare command to be resolved through PATH.
func IsPathLike(value string) bool {
	if strings.HasPrefix(value, "~") || strings.HasPrefix(value, ".") {
		return true
	}
	return strings.ContainsRune(value, '/') || strings.ContainsRune(value, filepath.Separator)
}

func (c *Config) normalizeDownload() {
	c.Download.Quality = strings.TrimSpace(c.Download.Quality)
	if c.Download.Quality == "" {
		c.Download.Quality = defaultQuality
	}
	c.Download.AudioBitrate = strings.TrimSpace(c.Download.AudioBitrate)
	if c.Download.AudioBitrate == "" {
		c.Download.AudioBitrate = defaultAudioBitrate
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
