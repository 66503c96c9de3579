package download

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"vidmerge/internal/fileutil"
	"vidmerge/internal/logging"
	"vidmerge/internal/services/ytdlp"
	"vidmerge/internal/textutil"
)

const (
	videoSuffix = ".video."
	audioSuffix = ".audio."
)

// separate pulls the video and audio streams into intermediates and merges
// them. Failing to obtain either stream is fatal; failing to merge is not.
func (r *run) separate(ctx context.Context) error {
	job := r.report.Job
	r.report.Mode = ModeSeparate

	rawTitle, err := r.ytdlp.Filename(ctx, job.URL, "%(title)s")
	if err != nil {
		r.logger.Error("could not determine video title", logging.Error(err))
		return Abort(fmt.Errorf("title probe: %w", err))
	}
	title := textutil.SanitizeTitle(rawTitle)
	if title == "" {
		return Abort(fmt.Errorf("title probe: empty title for %s", job.URL))
	}
	base := ytdlp.EscapeTemplate(filepath.Join(job.OutputDir, title))
	r.logger.Info("downloading video and audio separately", logging.String("title", title))

	video := ytdlp.Request{
		URL:            job.URL,
		Format:         ytdlp.VideoOnlySelector(job.Quality),
		OutputTemplate: base + ".video.%(ext)s",
	}
	if err := r.ytdlp.Download(ctx, video, r.emit); err != nil {
		r.logger.Error("video download failed", logging.Error(err))
		return Abort(fmt.Errorf("video download: %w", err))
	}

	audio := ytdlp.Request{
		URL:            job.URL,
		Format:         ytdlp.AudioOnlySelector,
		OutputTemplate: base + ".audio.%(ext)s",
	}
	if err := r.ytdlp.Download(ctx, audio, r.emit); err != nil {
		r.logger.Error("audio download failed", logging.Error(err))
		r.report.Leftovers = r.intermediates(title, videoSuffix)
		return Abort(fmt.Errorf("audio download: %w", err))
	}

	videoFiles := r.intermediates(title, videoSuffix)
	audioFiles := r.intermediates(title, audioSuffix)
	if len(videoFiles) == 0 || len(audioFiles) == 0 {
		r.report.Leftovers = append(videoFiles, audioFiles...)
		return Abort(fmt.Errorf("%w: %s", ErrIntermediatesMissing, filepath.Join(job.OutputDir, title)))
	}
	videoFile, audioFile := videoFiles[0], audioFiles[0]
	r.logger.Info("streams downloaded",
		logging.String("video", videoFile),
		logging.String("audio", audioFile),
	)

	if r.ffmpeg == nil {
		r.report.Outcome = OutcomeDownloadedUnmerged
		r.report.Leftovers = []string{videoFile, audioFile}
		return nil
	}

	output := filepath.Join(job.OutputDir, title+"."+mergeFormat)
	if err := r.merge(ctx, videoFile, audioFile, output); err != nil {
		r.report.Outcome = OutcomeDownloadedUnmerged
		r.report.Leftovers = []string{videoFile, audioFile}
		r.report.warn("merge failed: %s", err.Error())
		return nil
	}

	for _, path := range []string{videoFile, audioFile} {
		if err := fileutil.RemoveIfExists(path); err != nil {
			r.report.warn("could not remove %s: %s", path, err.Error())
		}
	}
	r.report.Outcome = OutcomeMerged
	r.report.FinalPath = output
	return nil
}

// merge runs the strict ffmpeg command and, when it fails, the reduced one.
func (r *run) merge(ctx context.Context, video, audio, output string) error {
	if err := fileutil.RemoveIfExists(output); err != nil {
		return fmt.Errorf("remove existing output: %w", err)
	}
	step := func(strict bool) func(context.Context) error {
		return func(ctx context.Context) error {
			err := r.ffmpeg.Merge(ctx, video, audio, output, strict, r.emit)
			if err != nil {
				// Leave no partial output for the next attempt to trip over.
				_ = fileutil.RemoveIfExists(output)
			}
			return err
		}
	}
	r.logger.Info("merging video and audio", logging.String("output", output))
	results, err := RunChain(ctx, r.logger, []Attempt{
		{Name: "merge_strict", Run: step(true)},
		{Name: "merge_plain", Run: step(false)},
	})
	if err != nil {
		logging.WarnWithContext(r.logger, "merge failed", "merge_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "audio and video remain in separate files"),
		)
		return err
	}
	if len(results) > 1 {
		r.logger.Info("merge succeeded with reduced command")
	}
	return nil
}

// intermediates lists finished stream files for title, ignoring yt-dlp's
// in-progress fragments.
func (r *run) intermediates(title, suffix string) []string {
	matches, err := fileutil.FindByPrefix(r.report.Job.OutputDir, title+suffix)
	if err != nil {
		r.logger.Debug("list intermediates", logging.Error(err))
		return nil
	}
	finished := matches[:0]
	for _, path := range matches {
		if strings.HasSuffix(path, ".part") || strings.HasSuffix(path, ".ytdl") {
			continue
		}
		finished = append(finished, path)
	}
	return finished
}
