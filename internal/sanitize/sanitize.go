// Package sanitize cleans generator output before it enters the
// pattern store. Stored templates are re-emitted into host prompts and
// expanded straight to users, so markup and control characters are
// stripped at the boundary while prose and placeholder braces pass
// through untouched.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// reMarkup matches XML/HTML-like tags, including closing and
	// self-closing forms and processing instructions.
	reMarkup = regexp.MustCompile(`<[/?!]?[a-zA-Z][^>]*>`)

	// reFence matches code-fence backtick runs.
	reFence = regexp.MustCompile("```+")

	// reBlankRun matches three or more consecutive newlines.
	reBlankRun = regexp.MustCompile(`\n{3,}`)
)

// Response cleans one generator response for extraction. Control
// characters other than newline and tab are dropped, markup tags and
// code fences are removed, and blank-line runs collapse to one blank
// line. Template placeholders like {userName} survive unchanged.
func Response(input string) string {
	if input == "" {
		return ""
	}
	s := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
	s = reMarkup.ReplaceAllString(s, "")
	s = reFence.ReplaceAllString(s, "")
	s = reBlankRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
