package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName returns name in Unicode NFC. macOS file systems hand back
// decomposed names, so comparisons between a probed title and a directory
// listing must go through this first.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// HasNamePrefix reports whether name starts with prefix after both are NFC
// normalized. The comparison is literal; no pattern characters are special.
func HasNamePrefix(name, prefix string) bool {
	return strings.HasPrefix(NormalizeName(name), NormalizeName(prefix))
}
