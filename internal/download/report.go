package download

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"vidmerge/internal/deps"
)

// Job is the input to a single run.
type Job struct {
	URL       string
	Quality   string
	OutputDir string
}

// Outcome summarises how a run ended.
type Outcome string

const (
	OutcomeMerged             Outcome = "merged"
	OutcomeDownloadedUnmerged Outcome = "downloaded_unmerged"
	OutcomeFailed             Outcome = "failed"
)

// Mode names the strategy that produced the result.
type Mode string

const (
	ModeCombined Mode = "combined"
	ModeSeparate Mode = "separate"
)

// Report is the result of a run.
type Report struct {
	RunID      string
	Job        Job
	Outcome    Outcome
	Mode       Mode
	FinalPath  string
	SizeBytes  int64
	Leftovers  []string
	Warnings   []string
	Attempts   []AttemptResult
	FFmpeg     deps.Status
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Detail is a one-line description suitable for history and tables.
func (r *Report) Detail() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	if len(r.Leftovers) > 0 {
		return "unmerged: " + strings.Join(r.Leftovers, ", ")
	}
	return strings.Join(r.Warnings, "; ")
}

// Summary renders the final console message for the run.
func (r *Report) Summary() string {
	switch r.Outcome {
	case OutcomeMerged:
		if r.FinalPath == "" {
			return "Download finished"
		}
		if r.SizeBytes >= 0 {
			return fmt.Sprintf("Download finished: %s (%s)", r.FinalPath, humanize.Bytes(uint64(r.SizeBytes)))
		}
		return "Download finished: " + r.FinalPath
	case OutcomeDownloadedUnmerged:
		return "Audio and video were downloaded but could not be merged. Files available: " + strings.Join(r.Leftovers, " and ")
	default:
		if r.Err != nil {
			return "Download failed: " + r.Err.Error()
		}
		return "Download failed"
	}
}
