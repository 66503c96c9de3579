package ffmpeg

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"vidmerge/internal/logging"
	"vidmerge/internal/procexec"
	"vidmerge/internal/services"
)

const (
	toolName = "ffmpeg"

	// DefaultAudioBitrate is the AAC bitrate used when none is configured.
	DefaultAudioBitrate = "192k"
)

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec procexec.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger sets the logger used to narrate commands.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAudioBitrate overrides the AAC bitrate.
func WithAudioBitrate(bitrate string) Option {
	return func(c *Client) {
		if bitrate = strings.TrimSpace(bitrate); bitrate != "" {
			c.bitrate = bitrate
		}
	}
}

// Client wraps ffmpeg CLI interactions.
type Client struct {
	binary  string
	bitrate string
	exec    procexec.Executor
	logger  *slog.Logger
}

// New constructs a client for the ffmpeg executable at binary.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	client := &Client{
		binary:  binary,
		bitrate: DefaultAudioBitrate,
		exec:    procexec.CommandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the executable the client runs.
func (c *Client) Binary() string {
	return c.binary
}

// AudioBitrate returns the AAC bitrate passed to -b:a.
func (c *Client) AudioBitrate() string {
	return c.bitrate
}

// PostprocessorArgs renders the audio settings in the form yt-dlp accepts
// for --postprocessor-args.
func (c *Client) PostprocessorArgs() string {
	return "-c:a aac -b:a " + c.bitrate
}

// MergeArgs builds the mux command line. strict adds the experimental codec
// flag that older ffmpeg builds require for the native AAC encoder.
func (c *Client) MergeArgs(video, audio, output string, strict bool) []string {
	args := []string{"-i", video, "-i", audio}
	args = append(args, c.audioArgs(strict)...)
	return append(args, output)
}

// ReencodeArgs builds the command line that copies the video stream of input
// and re-encodes its audio into output.
func (c *Client) ReencodeArgs(input, output string) []string {
	args := []string{"-i", input}
	args = append(args, c.audioArgs(true)...)
	return append(args, output)
}

func (c *Client) audioArgs(strict bool) []string {
	args := []string{"-c:v", "copy", "-c:a", "aac", "-b:a", c.bitrate}
	if strict {
		args = append(args, "-strict", "experimental")
	}
	return args
}

// Merge muxes video and audio into output, streaming ffmpeg's output to onLine.
func (c *Client) Merge(ctx context.Context, video, audio, output string, strict bool, onLine func(string)) error {
	operation := "merge"
	if !strict {
		operation = "merge (reduced)"
	}
	return c.run(ctx, operation, c.MergeArgs(video, audio, output, strict), onLine)
}

// ReencodeAudio rewrites input into output with AAC audio and copied video.
func (c *Client) ReencodeAudio(ctx context.Context, input, output string, onLine func(string)) error {
	return c.run(ctx, "re-encode audio", c.ReencodeArgs(input, output), onLine)
}

// Version returns the first line of `ffmpeg -version`.
func (c *Client) Version(ctx context.Context) (string, error) {
	stdout, _, err := c.exec.Output(ctx, c.binary, []string{"-hide_banner", "-version"})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, toolName, "version", "", err)
	}
	text := strings.TrimSpace(string(stdout))
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) run(ctx context.Context, operation string, args []string, onLine func(string)) error {
	c.logger.Info("running command", logging.String("command", procexec.Describe(c.binary, args)))
	if err := c.exec.Run(ctx, c.binary, args, onLine); err != nil {
		return services.Wrap(services.ErrExternalTool, toolName, operation, "", err)
	}
	return nil
}
