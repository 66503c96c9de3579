package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vidmerge/internal/config"
)

// isolate points HOME, XDG_DATA_HOME and the working directory at temp
// directories and clears the variables Load consults.
func isolate(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	home := filepath.Join(base, "home")
	work := filepath.Join(base, "work")
	for _, dir := range []string{home, work} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", "")
	for _, key := range []string{
		config.EnvDefaultQuality,
		config.EnvDefaultOutputDir,
		config.EnvYtDlpPath,
		config.EnvFFmpegPath,
		config.EnvLogLevel,
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Chdir(work)
	return base
}

func TestLoadDefaultsExpandPaths(t *testing.T) {
	base := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(base, "home", ".config", "vidmerge", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	wantOutput := filepath.Join(base, "work", "downloads")
	if got := evalPath(t, cfg.Paths.OutputDir); got != evalPath(t, wantOutput) {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Paths.OutputDir, wantOutput)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("expected absolute output dir, got %q", cfg.Paths.OutputDir)
	}
	wantState := filepath.Join(base, "home", ".local", "share", "vidmerge")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Download.Quality != "best" {
		t.Fatalf("expected default quality best, got %q", cfg.Download.Quality)
	}
	if cfg.Download.AudioBitrate != "192k" {
		t.Fatalf("expected default bitrate 192k, got %q", cfg.Download.AudioBitrate)
	}
	if cfg.Tools.YtDlpPath != "yt-dlp" {
		t.Fatalf("expected bare yt-dlp command, got %q", cfg.Tools.YtDlpPath)
	}
	if !cfg.Tools.AutoProvision {
		t.Fatal("expected auto provisioning enabled by default")
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.History.Keep != 500 {
		t.Fatalf("expected history keep 500, got %d", cfg.History.Keep)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.EnvFile() != "" {
		t.Fatalf("expected no env file, got %q", cfg.EnvFile())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.LockDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	base := isolate(t)
	configPath := filepath.Join(base, "vidmerge.toml")

	type payload struct {
		Paths struct {
			OutputDir string `toml:"output_dir"`
		} `toml:"paths"`
		Tools struct {
			YtDlpPath string `toml:"yt_dlp_path"`
		} `toml:"tools"`
		Download struct {
			Quality        string `toml:"quality"`
			TimeoutSeconds int    `toml:"timeout_seconds"`
		} `toml:"download"`
	}
	custom := payload{}
	custom.Paths.OutputDir = "~/videos"
	custom.Tools.YtDlpPath = "~/bin/yt-dlp"
	custom.Download.Quality = "1080p"
	custom.Download.TimeoutSeconds = 90
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	home := filepath.Join(base, "home")
	if cfg.Paths.OutputDir != filepath.Join(home, "videos") {
		t.Fatalf("unexpected output dir %q", cfg.Paths.OutputDir)
	}
	if cfg.Tools.YtDlpPath != filepath.Join(home, "bin", "yt-dlp") {
		t.Fatalf("unexpected yt-dlp path %q", cfg.Tools.YtDlpPath)
	}
	if cfg.Download.Quality != "1080p" {
		t.Fatalf("expected quality from file, got %q", cfg.Download.Quality)
	}
	if cfg.Download.TimeoutSeconds != 90 {
		t.Fatalf("expected timeout 90, got %d", cfg.Download.TimeoutSeconds)
	}
}

func TestEnvOverridesConfigFile(t *testing.T) {
	base := isolate(t)
	configPath := filepath.Join(base, "vidmerge.toml")
	content := "[download]\nquality = \"720p\"\n[paths]\noutput_dir = \"/srv/file\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("MEDIA_ROOT", filepath.Join(base, "media"))
	t.Setenv(config.EnvDefaultQuality, "1080p")
	t.Setenv(config.EnvDefaultOutputDir, "${MEDIA_ROOT}/incoming")
	t.Setenv(config.EnvYtDlpPath, "$MEDIA_ROOT/bin/yt-dlp")
	t.Setenv(config.EnvLogLevel, "DEBUG")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Download.Quality != "1080p" {
		t.Fatalf("expected env quality, got %q", cfg.Download.Quality)
	}
	if cfg.Paths.OutputDir != filepath.Join(base, "media", "incoming") {
		t.Fatalf("expected expanded env output dir, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Tools.YtDlpPath != filepath.Join(base, "media", "bin", "yt-dlp") {
		t.Fatalf("expected expanded yt-dlp path, got %q", cfg.Tools.YtDlpPath)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowercased env log level, got %q", cfg.Logging.Level)
	}
}

func TestDotenvFileSuppliesDefaults(t *testing.T) {
	base := isolate(t)
	envPath := filepath.Join(base, "work", ".env")
	content := strings.Join([]string{
		"DEFAULT_QUALITY=720p",
		"DEFAULT_OUTPUT_DIR=" + filepath.Join(base, "from-dotenv"),
		"FFMPEG_PATH=/opt/ffmpeg/bin/ffmpeg",
		"",
	}, "\n")
	if err := os.WriteFile(envPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// The process environment wins over the file.
	t.Setenv(config.EnvDefaultQuality, "1080p")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.EnvFile() == "" {
		t.Fatal("expected env file to be recorded")
	}
	if cfg.Download.Quality != "1080p" {
		t.Fatalf("expected process env to win, got %q", cfg.Download.Quality)
	}
	if cfg.Paths.OutputDir != filepath.Join(base, "from-dotenv") {
		t.Fatalf("expected output dir from .env, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Tools.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected ffmpeg path from .env, got %q", cfg.Tools.FFmpegPath)
	}
	if _, ok := os.LookupEnv(config.EnvFFmpegPath); ok {
		t.Fatal("dotenv values must not leak into the process environment")
	}
}

func TestExplicitEnvFileMustExist(t *testing.T) {
	base := isolate(t)
	configPath := filepath.Join(base, "vidmerge.toml")
	content := "[paths]\nenv_file = \"" + filepath.ToSlash(filepath.Join(base, "missing.env")) + "\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "env_file") {
		t.Fatalf("expected env_file error, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"negative timeout", func(c *config.Config) { c.Download.TimeoutSeconds = -1 }, "timeout_seconds"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"relative provision url", func(c *config.Config) { c.Tools.ProvisionURL = "watch?v=1" }, "provision_url"},
		{"negative history keep", func(c *config.Config) { c.History.Keep = -1 }, "history.keep"},
		{"multi-line quality", func(c *config.Config) { c.Download.Quality = "best\nworst" }, "single line"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestIsPathLike(t *testing.T) {
	cases := map[string]bool{
		"yt-dlp":              false,
		"./yt-dlp":            true,
		"~/bin/yt-dlp":        true,
		"/usr/local/bin/tool": true,
	}
	for input, want := range cases {
		if got := config.IsPathLike(input); got != want {
			t.Fatalf("IsPathLike(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestCreateSampleLoads(t *testing.T) {
	base := isolate(t)
	target := filepath.Join(base, "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Download.Quality != "best" {
		t.Fatalf("unexpected sample quality %q", cfg.Download.Quality)
	}
}

func evalPath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(filepath.Dir(path))
	if err != nil {
		return path
	}
	return filepath.Join(resolved, filepath.Base(path))
}
