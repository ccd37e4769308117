// Package sanitize cleans admin-authored text before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips markup from text that readers see as plain text.
type Sanitizer interface {
	Sanitize(raw string) string
}

type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer returns a Sanitizer that drops every element, along with
// the content of script, style and similar elements, and keeps the text.
// The result is unescaped, so "R&D" is stored as typed and not as "R&amp;D".
func NewTextSanitizer() Sanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

func (s *textSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}
