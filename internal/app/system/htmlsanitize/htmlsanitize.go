// Package htmlsanitize cleans user-entered text before it is sent to the
// backend or echoed into a page.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every tag; script and style bodies go with them.
var strict = bluemonday.StrictPolicy()

// StripTags returns s with all markup removed and entities decoded, so the
// result is plain text suitable for a JSON field.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s contains no markup.
func IsPlainText(s string) bool {
	return StripTags(s) == strings.TrimSpace(s)
}
