package config

const (
	defaultOutputDir     = "./downloads"
	defaultQuality       = "best"
	defaultYtDlpPath     = "yt-dlp"
	defaultAudioBitrate  = "192k"
	defaultProvisionURL  = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	defaultEnvFile       = ".env"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultAutoProvision = true
	defaultHistory       = true
	defaultHistoryKeep   = 500
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir(),
		},
		Tools: Tools{
			YtDlpPath:     defaultYtDlpPath,
			AutoProvision: defaultAutoProvision,
			ProvisionURL:  defaultProvisionURL,
		},
		Download: Download{
			Quality:      defaultQuality,
			AudioBitrate: defaultAudioBitrate,
		},
		History: History{
			Enabled: defaultHistory,
			Keep:    defaultHistoryKeep,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
