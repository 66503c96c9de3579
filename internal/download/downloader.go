package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"vidmerge/internal/config"
	"vidmerge/internal/deps"
	"vidmerge/internal/fileutil"
	"vidmerge/internal/history"
	"vidmerge/internal/logging"
	"vidmerge/internal/procexec"
	"vidmerge/internal/services"
	"vidmerge/internal/services/ffmpeg"
	"vidmerge/internal/services/ytdlp"
)

// Recorder persists finished runs.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) (int64, error)
}

// pruner is implemented by recorders that can drop old runs.
type pruner interface {
	Prune(ctx context.Context, keep int) (int64, error)
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithExecutor injects the executor used for every child process.
func WithExecutor(exec procexec.Executor) Option {
	return func(d *Downloader) {
		if exec != nil {
			d.exec = exec
		}
	}
}

// WithOutput sets where tool output lines are streamed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(d *Downloader) {
		if w != nil {
			d.out = w
		}
	}
}

// WithRecorder overrides the history sink. By default the history database
// is opened per run when history is enabled.
func WithRecorder(recorder Recorder) Option {
	return func(d *Downloader) {
		d.recorder = recorder
	}
}

// WithFFmpegLocations replaces the fixed ffmpeg install locations probed
// during resolution.
func WithFFmpegLocations(paths ...string) Option {
	return func(d *Downloader) {
		d.ffmpegLocations = append([]string{}, paths...)
	}
}

// Downloader runs download jobs against a fixed configuration.
type Downloader struct {
	cfg             *config.Config
	logger          *slog.Logger
	exec            procexec.Executor
	out             io.Writer
	recorder        Recorder
	ffmpegLocations []string
	now             func() time.Time
}

// New constructs a Downloader.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Downloader, error) {
	if cfg == nil {
		return nil, errors.New("download: config required")
	}
	d := &Downloader{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "download"),
		exec:   procexec.CommandExecutor{Timeout: time.Duration(cfg.Download.TimeoutSeconds) * time.Second},
		out:    os.Stdout,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// run carries the state of one invocation.
type run struct {
	d      *Downloader
	logger *slog.Logger
	report *Report
	ytdlp  *ytdlp.Client
	ffmpeg *ffmpeg.Client
}

// Run downloads job. The returned error is non-nil only when the run could
// not start: an empty URL or a busy output directory. Every other failure is
// described by the report, whose Outcome is then OutcomeFailed.
func (d *Downloader) Run(ctx context.Context, job Job) (*Report, error) {
	job = d.normalizeJob(job)
	if job.URL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "download", "run", "video URL required", nil)
	}

	report := &Report{
		RunID:     uuid.NewString(),
		Job:       job,
		Outcome:   OutcomeFailed,
		StartedAt: d.now(),
	}
	ctx = logging.WithRunID(ctx, report.RunID)
	r := &run{d: d, logger: logging.WithContext(ctx, d.logger), report: report}

	dir, err := prepareOutputDir(job.OutputDir)
	if err != nil {
		report.Err = err
		return d.finish(ctx, r), nil
	}
	report.Job.OutputDir = dir

	lock, err := d.acquireLock(dir)
	if err != nil {
		if errors.Is(err, ErrBusy) {
			return nil, err
		}
		report.Err = err
		return d.finish(ctx, r), nil
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	r.execute(ctx)
	return d.finish(ctx, r), nil
}

func (d *Downloader) normalizeJob(job Job) Job {
	job.URL = strings.TrimSpace(job.URL)
	job.Quality = strings.TrimSpace(job.Quality)
	if job.Quality == "" {
		job.Quality = d.cfg.Download.Quality
	}
	job.OutputDir = StripQuotes(strings.TrimSpace(job.OutputDir))
	if job.OutputDir == "" {
		job.OutputDir = d.cfg.Paths.OutputDir
	}
	return job
}

// StripQuotes removes leading and trailing quote characters, which shells
// on some platforms leave on pasted paths.
func StripQuotes(value string) string {
	return strings.Trim(value, `"'`)
}

func prepareOutputDir(dir string) (string, error) {
	expanded, err := config.ExpandPath(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output directory: %w", err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve output directory: %w", err)
	}
	if _, statErr := os.Stat(abs); errors.Is(statErr, os.ErrNotExist) {
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}
	return abs, nil
}

func (d *Downloader) acquireLock(dir string) (*flock.Flock, error) {
	if err := d.cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure state directories: %w", err)
	}
	lock := flock.New(lockPath(d.cfg, dir))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBusy, dir)
	}
	return lock, nil
}

// lockPath names the lock file guarding dir.
func lockPath(cfg *config.Config, dir string) string {
	sum := sha256.Sum256([]byte(dir))
	return filepath.Join(cfg.LockDir(), hex.EncodeToString(sum[:])[:16]+".lock")
}

// execute resolves the tools and walks the strategy chain. A panic anywhere
// below is logged with its stack and turned into a failed outcome.
func (r *run) execute(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.report.Outcome = OutcomeFailed
			r.report.Err = fmt.Errorf("unexpected panic: %v", rec)
			r.logger.Error("run aborted by panic",
				logging.Any("panic", rec),
				logging.String("stack", string(debug.Stack())),
			)
		}
	}()

	if err := r.resolveTools(ctx); err != nil {
		r.report.Err = err
		return
	}

	attempts := []Attempt{
		{Name: string(ModeCombined), Run: r.combined},
		{Name: string(ModeSeparate), Run: r.separate},
	}
	results, err := RunChain(ctx, r.logger, attempts)
	r.report.Attempts = results
	if err != nil {
		r.report.Outcome = OutcomeFailed
		r.report.Err = err
	}
}

func (r *run) resolveTools(ctx context.Context) error {
	cfg := r.d.cfg
	ytPath, err := deps.ResolveExecutable(cfg.Tools.YtDlpPath)
	if err != nil {
		r.logger.Error("yt-dlp not found",
			logging.String("path", cfg.Tools.YtDlpPath),
			logging.String(logging.FieldErrorHint, "install yt-dlp or set YT_DLP_PATH"),
		)
		return fmt.Errorf("%w: %w", ErrRetrievalMissing, err)
	}
	r.ytdlp, err = ytdlp.New(ytPath, ytdlp.WithExecutor(r.d.exec), ytdlp.WithLogger(r.logger))
	if err != nil {
		return err
	}

	locator := deps.FFmpegLocator{
		Configured: cfg.Tools.FFmpegPath,
		YtDlpPath:  ytPath,
		Locations:  r.d.ffmpegLocations,
		Logger:     r.logger,
	}
	if cfg.Tools.AutoProvision {
		locator.Provision = func(ctx context.Context, dir string) error {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			template := ytdlp.EscapeTemplate(dir) + string(filepath.Separator) + "temp.%(ext)s"
			return r.ytdlp.Provision(ctx, cfg.Tools.ProvisionURL, template)
		}
	}
	status := locator.Locate(ctx)
	r.report.FFmpeg = status
	if !status.Available {
		logging.WarnWithContext(r.logger, "ffmpeg not found, merging will be skipped", "ffmpeg_missing",
			logging.String(logging.FieldErrorHint, "install ffmpeg or set FFMPEG_PATH"),
			logging.String(logging.FieldImpact, "streams will be left as separate files"),
		)
		return nil
	}
	r.logger.Info("ffmpeg resolved",
		logging.String("path", status.Command),
		logging.String("source", string(status.Source)),
	)
	r.ffmpeg, err = ffmpeg.New(status.Command,
		ffmpeg.WithExecutor(r.d.exec),
		ffmpeg.WithLogger(r.logger),
		ffmpeg.WithAudioBitrate(cfg.Download.AudioBitrate),
	)
	return err
}

// emit streams one tool output line to the console.
func (r *run) emit(line string) {
	fmt.Fprintln(r.d.out, line)
}

func (d *Downloader) finish(ctx context.Context, r *run) *Report {
	report := r.report
	report.FinishedAt = d.now()
	if report.Outcome == OutcomeMerged && report.FinalPath != "" {
		report.SizeBytes = fileutil.Size(report.FinalPath)
	}
	d.record(ctx, r)

	elapsed := logging.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt))
	switch report.Outcome {
	case OutcomeMerged:
		r.logger.Info(report.Summary(),
			logging.String("mode", string(report.Mode)),
			logging.Int64("size_bytes", report.SizeBytes),
			elapsed,
		)
	case OutcomeDownloadedUnmerged:
		logging.WarnWithContext(r.logger, report.Summary(), "merge_skipped",
			logging.String(logging.FieldImpact, "audio and video remain in separate files"),
			elapsed,
		)
	default:
		logging.ErrorWithContext(r.logger, report.Summary(), "download_failed", elapsed)
	}
	return report
}

func (d *Downloader) record(ctx context.Context, r *run) {
	recorder := d.recorder
	if recorder == nil {
		if !d.cfg.History.Enabled {
			return
		}
		store, err := history.Open(d.cfg)
		if err != nil {
			r.logger.Warn("history unavailable", logging.Error(err))
			return
		}
		defer store.Close()
		recorder = store
	}
	report := r.report
	entry := history.Entry{
		RunID:      report.RunID,
		URL:        report.Job.URL,
		Quality:    report.Job.Quality,
		OutputDir:  report.Job.OutputDir,
		Mode:       string(report.Mode),
		Outcome:    string(report.Outcome),
		FinalPath:  report.FinalPath,
		SizeBytes:  max(report.SizeBytes, 0),
		Detail:     report.Detail(),
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
	}
	// Record even when the run was cancelled.
	ctx = context.WithoutCancel(ctx)
	if _, err := recorder.Record(ctx, entry); err != nil {
		r.logger.Warn("failed to record run", logging.Error(err))
		return
	}
	if p, ok := recorder.(pruner); ok && d.cfg.History.Keep > 0 {
		if removed, err := p.Prune(ctx, d.cfg.History.Keep); err != nil {
			r.logger.Warn("failed to prune history", logging.Error(err))
		} else if removed > 0 {
			r.logger.Debug("pruned history", logging.Int64("removed", removed))
		}
	}
}
