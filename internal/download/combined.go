package download

import (
	"context"
	"path/filepath"
	"strings"

	"vidmerge/internal/fileutil"
	"vidmerge/internal/logging"
	"vidmerge/internal/services/ytdlp"
)

const (
	mergeFormat = "mp4"
	tempPrefix  = "temp_"
)

var replaceFile = fileutil.ReplaceFile

// combined asks yt-dlp to fetch and merge in a single call, then runs the
// compatibility re-encode on the result.
func (r *run) combined(ctx context.Context) error {
	if r.ffmpeg == nil {
		return ErrFFmpegUnavailable
	}
	job := r.report.Job
	req := ytdlp.Request{
		URL:               job.URL,
		Format:            ytdlp.CombinedSelector(job.Quality),
		FFmpegLocation:    r.ffmpeg.Binary(),
		MergeFormat:       mergeFormat,
		PostprocessorArgs: r.ffmpeg.PostprocessorArgs(),
		OutputTemplate:    ytdlp.EscapeTemplate(job.OutputDir) + string(filepath.Separator) + "%(title)s.%(ext)s",
	}

	var announced string
	r.logger.Info("downloading with combined video and audio", logging.String("format", req.Format))
	err := r.ytdlp.Download(ctx, req, func(line string) {
		r.emit(line)
		if path, ok := ytdlp.MergedPath(line); ok {
			announced = path
		}
	})
	if err != nil {
		logging.WarnWithContext(r.logger, "combined download failed, trying separate streams", "combined_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "falling back to separate video and audio downloads"),
		)
		return err
	}

	r.report.Mode = ModeCombined
	r.report.Outcome = OutcomeMerged
	target := r.producedFile(announced)
	if target == "" {
		r.report.warn("no %s file found in %s after download", mergeFormat, job.OutputDir)
		logging.WarnWithContext(r.logger, "could not locate the downloaded file, skipping compatibility pass", "compat_target_missing")
		return nil
	}
	r.report.FinalPath = target
	r.compatibilityPass(ctx, target)
	return nil
}

// producedFile prefers the path yt-dlp announced while merging and falls back
// to the newest mp4 in the output directory.
func (r *run) producedFile(announced string) string {
	dir := r.report.Job.OutputDir
	if announced != "" {
		clean := filepath.Clean(announced)
		if !filepath.IsAbs(clean) {
			clean = filepath.Join(dir, clean)
		}
		if filepath.Dir(clean) == dir && fileutil.Size(clean) >= 0 {
			return clean
		}
	}
	newest, err := fileutil.NewestWithExt(dir, "."+mergeFormat, tempPrefix)
	if err != nil {
		return ""
	}
	return newest
}

// compatibilityPass re-encodes the audio of target into a sibling temp file
// and swaps it in. Any failure leaves target untouched and is reported as a
// warning.
func (r *run) compatibilityPass(ctx context.Context, target string) {
	temp := filepath.Join(filepath.Dir(target), tempPrefix+filepath.Base(target))
	if err := fileutil.RemoveIfExists(temp); err != nil {
		r.compatFailed(temp, "remove stale temp file", err)
		return
	}

	r.logger.Info("re-encoding audio for compatibility", logging.String("file", target))
	if err := r.ffmpeg.ReencodeAudio(ctx, target, temp, r.emit); err != nil {
		r.compatFailed(temp, "re-encode", err)
		return
	}
	if err := replaceFile(temp, target); err != nil {
		// Keep the re-encoded copy; the original may already be gone.
		r.compatFailed("", "replace original", err)
		if fileutil.Size(temp) >= 0 {
			if fileutil.Size(target) < 0 {
				r.report.FinalPath = temp
			}
			r.report.warn("re-encoded copy kept at %s", temp)
		}
		return
	}
	r.logger.Info("audio re-encoded", logging.String("file", target))
}

func (r *run) compatFailed(temp, step string, err error) {
	if temp != "" {
		if rmErr := fileutil.RemoveIfExists(temp); rmErr != nil {
			r.logger.Debug("failed to remove temp file", logging.String("file", temp), logging.Error(rmErr))
		}
	}
	r.report.warn("compatibility %s failed: %s", step, strings.TrimSpace(err.Error()))
	logging.WarnWithContext(r.logger, "compatibility re-encode failed, keeping original file", "compat_reencode_failed",
		logging.String("step", step),
		logging.Error(err),
		logging.String(logging.FieldImpact, "the downloaded file keeps its original audio track"),
	)
}
