package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxTitleBytes caps a sanitized title so "<title>.video.webm.part" still
// fits the common 255-byte file name limit.
const MaxTitleBytes = 200

// SanitizeTitle turns a video title into a file name stem.
//
// Path separators, colons and asterisks become dashes; quotes, angle
// brackets, pipes and question marks are dropped; control characters and
// runs of whitespace collapse to one space. Leading dots and trailing dots
// or spaces are trimmed so the file is neither hidden nor rejected by
// Windows. The result is NFC and at most MaxTitleBytes long.
func SanitizeTitle(title string) string {
	var b strings.Builder
	space := false
	for _, r := range NormalizeName(title) {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*':
			r = '-'
		case r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			continue
		case unicode.IsSpace(r) || unicode.IsControl(r):
			space = b.Len() > 0
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	out := strings.TrimLeft(b.String(), ".")
	out = truncateBytes(out, MaxTitleBytes)
	return strings.TrimRight(out, ". ")
}

func truncateBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
