package download

import "errors"

var (
	// ErrRetrievalMissing reports that the yt-dlp executable does not exist.
	ErrRetrievalMissing = errors.New("yt-dlp executable not found")
	// ErrIntermediatesMissing reports that separate-mode pulls exited cleanly
	// but left no video or audio file behind.
	ErrIntermediatesMissing = errors.New("downloaded streams not found")
	// ErrBusy reports that another run holds the output directory lock.
	ErrBusy = errors.New("output directory is in use by another run")
	// ErrFFmpegUnavailable reports that no ffmpeg executable could be resolved.
	ErrFFmpegUnavailable = errors.New("ffmpeg unavailable")
)
