package ytdlp

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"vidmerge/internal/logging"
	"vidmerge/internal/procexec"
	"vidmerge/internal/services"
)

const toolName = "yt-dlp"

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

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary string
	exec   procexec.Executor
	logger *slog.Logger
}

// New constructs a yt-dlp client for the given executable.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary: binary,
		exec:   procexec.CommandExecutor{},
		logger: logging.NewNop(),
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

// Request describes a single yt-dlp download invocation.
type Request struct {
	URL            string
	Format         string
	OutputTemplate string
	// FFmpegLocation, MergeFormat, and PostprocessorArgs are only emitted
	// when non-empty.
	FFmpegLocation    string
	MergeFormat       string
	PostprocessorArgs string
}

// Args renders the request as a yt-dlp argument list.
func (r Request) Args() []string {
	args := make([]string, 0, 11)
	if r.Format != "" {
		args = append(args, "-f", r.Format)
	}
	if r.FFmpegLocation != "" {
		args = append(args, "--ffmpeg-location", r.FFmpegLocation)
	}
	if r.MergeFormat != "" {
		args = append(args, "--merge-output-format", r.MergeFormat)
	}
	if r.PostprocessorArgs != "" {
		args = append(args, "--postprocessor-args", r.PostprocessorArgs)
	}
	if r.OutputTemplate != "" {
		args = append(args, "-o", r.OutputTemplate)
	}
	return append(args, r.URL)
}

// Download runs yt-dlp for req, forwarding every output line to onLine and
// blocking until it exits.
func (c *Client) Download(ctx context.Context, req Request, onLine func(string)) error {
	if strings.TrimSpace(req.URL) == "" {
		return services.Wrap(services.ErrConfiguration, toolName, "download", "url required", nil)
	}
	args := req.Args()
	c.logger.Info("running command", logging.String("command", procexec.Describe(c.binary, args)))
	if err := c.exec.Run(ctx, c.binary, args, onLine); err != nil {
		return services.Wrap(services.ErrExternalTool, toolName, "download", "", err)
	}
	return nil
}

// Filename asks yt-dlp to resolve template for url without downloading and
// returns the trimmed result.
func (c *Client) Filename(ctx context.Context, url, template string) (string, error) {
	args := []string{"--get-filename", "-o", template, url}
	c.logger.Debug("running command", logging.String("command", procexec.Describe(c.binary, args)))
	stdout, stderr, err := c.exec.Output(ctx, c.binary, args)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, toolName, "get filename", lastLine(stderr), err)
	}
	name := strings.TrimSpace(string(stdout))
	if name == "" {
		return "", services.Wrap(services.ErrExternalTool, toolName, "get filename", "empty result", nil)
	}
	return name, nil
}

// Provision downloads url as mp3 into outputTemplate purely so yt-dlp fetches
// the post-processing dependencies it bundles. Output is captured, not
// streamed.
func (c *Client) Provision(ctx context.Context, url, outputTemplate string) error {
	args := []string{
		"--extract-audio",
		"--audio-format", "mp3",
		"-o", outputTemplate,
		url,
		"--rm-cache-dir",
	}
	c.logger.Info("running command", logging.String("command", procexec.Describe(c.binary, args)))
	if _, stderr, err := c.exec.Output(ctx, c.binary, args); err != nil {
		return services.Wrap(services.ErrExternalTool, toolName, "provision", lastLine(stderr), err)
	}
	return nil
}

// Version returns the first line of `yt-dlp --version`.
func (c *Client) Version(ctx context.Context) (string, error) {
	stdout, stderr, err := c.exec.Output(ctx, c.binary, []string{"--version"})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, toolName, "version", lastLine(stderr), err)
	}
	return firstLine(stdout), nil
}

var mergerPattern = regexp.MustCompile(`^\[Merger\] Merging formats into "(.+)"\s*$`)

// MergedPath extracts the destination path from yt-dlp's merger
// announcement. It reports false for any other line.
func MergedPath(line string) (string, bool) {
	match := mergerPattern.FindStringSubmatch(strings.TrimSpace(line))
	if match == nil {
		return "", false
	}
	return match[1], true
}

func firstLine(data []byte) string {
	text := strings.TrimSpace(string(data))
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func lastLine(data []byte) string {
	text := strings.TrimSpace(string(data))
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		text = text[idx+1:]
	}
	return strings.TrimSpace(text)
}
