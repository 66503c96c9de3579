package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables honoured by Load.
const (
	EnvDefaultQuality   = "DEFAULT_QUALITY"
	EnvDefaultOutputDir = "DEFAULT_OUTPUT_DIR"
	EnvYtDlpPath        = "YT_DLP_PATH"
	EnvFFmpegPath       = "FFMPEG_PATH"
	EnvLogLevel         = "VIDMERGE_LOG_LEVEL"
)

// environment merges the process environment with values read from a dotenv
// file. The process environment always wins, matching dotenv's no-override
// semantics, but the file is never written back into os.Environ.
type environment struct {
	file   string
	values map[string]string
}

func newEnvironment(configured string) (environment, error) {
	explicit := strings.TrimSpace(configured) != ""
	candidate := defaultEnvFile
	if explicit {
		candidate = strings.TrimSpace(configured)
	}
	path, err := expandPath(os.ExpandEnv(candidate))
	if err != nil {
		return environment{}, fmt.Errorf("paths.env_file: %w", err)
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if explicit {
			return environment{}, fmt.Errorf("paths.env_file: %s does not exist", path)
		}
		return environment{}, nil
	case err != nil:
		return environment{}, fmt.Errorf("stat env file: %w", err)
	case info.IsDir():
		return environment{}, fmt.Errorf("paths.env_file: %s is a directory", path)
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return environment{}, fmt.Errorf("read env file %s: %w", path, err)
	}
	return environment{file: path, values: values}, nil
}

func (e environment) lookup(key string) (string, bool) {
	if value, ok := os.LookupEnv(key); ok {
		return value, true
	}
	value, ok := e.values[key]
	return value, ok
}

// expand replaces $VAR and ${VAR} references. Unknown variables expand to the
// empty string, as with a POSIX shell.
func (e environment) expand(value string) string {
	if !strings.Contains(value, "$") {
		return value
	}
	return os.Expand(value, func(key string) string {
		v, _ := e.lookup(key)
		return v
	})
}

func (c *Config) applyEnvironment(env environment) {
	if value, ok := env.lookup(EnvDefaultQuality); ok && strings.TrimSpace(value) != "" {
		c.Download.Quality = value
	}
	if value, ok := env.lookup(EnvDefaultOutputDir); ok && strings.TrimSpace(value) != "" {
		c.Paths.OutputDir = value
	}
	if value, ok := env.lookup(EnvYtDlpPath); ok && strings.TrimSpace(value) != "" {
		c.Tools.YtDlpPath = value
	}
	if value, ok := env.lookup(EnvFFmpegPath); ok && strings.TrimSpace(value) != "" {
		c.Tools.FFmpegPath = value
	}
	if value, ok := env.lookup(EnvLogLevel); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
}
