// Package htmlsanitize strips markup from user-entered report text.
// Report fields are plain text; any tags are removed before storage.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// maxPasses bounds how many layers of entity encoding Text will peel.
const maxPasses = 8

// Text removes all HTML from s and trims surrounding whitespace.
// Entities are unescaped so "Tom & Jerry" round-trips unchanged. Markup
// hidden behind entities is decoded and sanitized again until nothing
// changes; input that never settles is returned still escaped.
func Text(s string) string {
	if s == "" {
		return ""
	}
	for range maxPasses {
		next := html.UnescapeString(strict.Sanitize(s))
		if next == s {
			return strings.TrimSpace(next)
		}
		s = next
	}
	return strings.TrimSpace(strict.Sanitize(s))
}
