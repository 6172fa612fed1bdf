package util

import (
	"fmt"
	"strings"
	"time"
)

// Slugify lowercases the title, spells out ampersands and collapses every
// other non-alphanumeric run into a single hyphen.
func Slugify(s string) string {
	s = strings.ReplaceAll(s, "&", " and ")
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// UniqueSuffix disambiguates a colliding slug with the current unix
// millisecond timestamp.
func UniqueSuffix(slug string) string {
	return fmt.Sprintf("%s-%d", slug, time.Now().UnixMilli())
}
