// Package sanitize cleans user-supplied text before it is stored. Profile
// names and descriptions are plain text, so every tag is stripped with a
// bluemonday strict policy and whitespace is normalised.
package sanitize

import (
	"html"
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the shared strict policy, built on first use.
var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// PlainText strips all HTML from input, decodes the entities bluemonday
// escapes, drops control characters and trims surrounding whitespace. The
// result is safe to store and must still be escaped when rendered.
func PlainText(input string) string {
	if input == "" {
		return ""
	}
	stripped := html.UnescapeString(getPolicy().Sanitize(input))
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, stripped)
	return strings.TrimSpace(cleaned)
}

// Name is PlainText collapsed onto a single line, for short labels such as
// profile names.
func Name(input string) string {
	return strings.Join(strings.Fields(PlainText(input)), " ")
}
