// Package config loads, normalizes, and validates vidmerge configuration data.
//
// It supplies repository defaults, reads an optional TOML file, layers values
// from a dotenv file and the process environment (DEFAULT_QUALITY,
// DEFAULT_OUTPUT_DIR, YT_DLP_PATH, FFMPEG_PATH), and expands user paths
// including tilde shortcuts and $VAR references. The resulting Config is built
// once at startup and handed to the download orchestrator by value, so no
// package reads the environment on its own.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
