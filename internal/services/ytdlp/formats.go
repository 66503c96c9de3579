package ytdlp

import (
	"fmt"
	"strconv"
	"strings"
)

// Recognised quality presets.
const (
	QualityBest  = "best"
	Quality720p  = "720p"
	Quality1080p = "1080p"
)

// AudioOnlySelector prefers non-opus audio, which the mp4 container and
// older players handle poorly.
const AudioOnlySelector = "bestaudio[ext!=opus]/bestaudio"

var combinedSelectors = map[string]string{
	Quality720p:  "bestvideo[height<=720]+bestaudio[ext!=opus]/bestvideo[height<=720]+bestaudio",
	Quality1080p: "bestvideo[height<=1080]+bestaudio[ext!=opus]/bestvideo[height<=1080]+bestaudio",
	QualityBest:  "bestvideo+bestaudio[ext!=opus]/bestvideo+bestaudio",
}

// CombinedSelector maps a quality preset to a merged video+audio selector.
// Unrecognised values are yt-dlp format expressions and pass through verbatim.
func CombinedSelector(quality string) string {
	if selector, ok := combinedSelectors[quality]; ok {
		return selector
	}
	return quality
}

// VideoOnlySelector returns the video-stream selector for separate
// downloads: height-capped when quality carries a numeric "p" suffix,
// otherwise the best available video.
func VideoOnlySelector(quality string) string {
	if height, ok := HeightOf(quality); ok {
		return fmt.Sprintf("bestvideo[height<=%d]", height)
	}
	return "bestvideo"
}

// HeightOf parses a "<digits>p" quality into its pixel height.
func HeightOf(quality string) (int, bool) {
	digits, ok := strings.CutSuffix(quality, "p")
	if !ok || digits == "" {
		return 0, false
	}
	height, err := strconv.Atoi(digits)
	if err != nil || height <= 0 {
		return 0, false
	}
	return height, true
}

// EscapeTemplate protects literal text (directories, probed titles) placed in
// an output template so yt-dlp does not read '%' as a field reference.
func EscapeTemplate(literal string) string {
	return strings.ReplaceAll(literal, "%", "%%")
}
