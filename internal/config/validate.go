package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.History.Keep < 0 {
		return errors.New("history.keep must be zero (keep everything) or positive")
	}
	return nil
}

func (c *Config) validateDownload() error {
	if strings.ContainsAny(c.Download.Quality, "\r\n") {
		return errors.New("download.quality must be a single line")
	}
	if strings.ContainsAny(c.Download.AudioBitrate, " \t") {
		return fmt.Errorf("download.audio_bitrate %q must not contain whitespace", c.Download.AudioBitrate)
	}
	if c.Download.TimeoutSeconds < 0 {
		return errors.New("download.timeout_seconds must be zero (no timeout) or positive")
	}
	return nil
}

func (c *Config) validateTools() error {
	if !c.Tools.AutoProvision {
		return nil
	}
	parsed, err := url.Parse(c.Tools.ProvisionURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("tools.provision_url %q must be an absolute URL", c.Tools.ProvisionURL)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}
