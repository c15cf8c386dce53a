package models

import (
	"strings"
	"unicode"
)

// Slugify derives a URL slug from a display name: letters, digits and
// combining marks are lower-cased and kept, every run of anything else collapses to one hyphen,
// and hyphens are trimmed from both ends. The result is deterministic and may
// be empty when name holds no letters or digits.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingHyphen := false
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
