// Package template expands {variableName} placeholders in response
// templates. Expansion is pure and never lets a brace leak into the
// output: unresolvable placeholders take their clause with them, and a
// result too short to say anything is reported as unusable.
package template

import (
	"errors"
	"regexp"
	"strings"

	"github.com/luminathea/reflex/internal/models"
)

// ErrTooShort reports that so much of the template was deleted during
// repair that no meaningful response remains. The caller must treat the
// pattern as unusable for this request.
var ErrTooShort = errors.New("expanded text too short")

// minExpandedRunes is the smallest expansion still worth saying.
const minExpandedRunes = 3

// softDefaults maps the three soft variables to their built-in defaults.
// Every other variable is hard: when absent, its clause is deleted.
var softDefaults = map[string]string{
	models.VarUserName:       "you",
	models.VarTimeExpression: "now",
	models.VarMoodExpression: "",
}

// SoftDefault returns the built-in default for a soft variable and
// whether the name is soft at all. Extraction uses it to avoid
// parameterizing values that are indistinguishable from defaults.
func SoftDefault(name string) (string, bool) {
	v, ok := softDefaults[name]
	return v, ok
}

// sentence-delimiting punctuation for clause repair.
const clauseDelims = ".!?…。！？"

// Expand substitutes vars into tpl. Soft variables fall back to their
// defaults; a missing hard variable (or an unknown or malformed
// placeholder) deletes the clause containing it up to the nearest
// sentence-delimiting punctuation on both sides. Punctuation artifacts
// left by deletion are normalized. Returns ErrTooShort when fewer than 3
// runes survive.
func Expand(tpl string, vars models.Variables) (string, error) {
	runes := []rune(tpl)

	// Repair pass: remove clauses around unresolvable placeholders until
	// everything left can be substituted.
	for {
		start, end, found := findUnresolvable(runes, vars)
		if !found {
			break
		}
		runes = deleteClause(runes, start, end)
	}

	expanded := substitute(runes, vars)
	expanded = normalize(expanded)

	if len([]rune(expanded)) < minExpandedRunes {
		return "", ErrTooShort
	}
	return expanded, nil
}

// findUnresolvable locates the first placeholder that cannot be
// substituted: an unknown name, a hard variable without a value, or a
// stray unmatched brace. Returns the rune range [start, end).
func findUnresolvable(runes []rune, vars models.Variables) (int, int, bool) {
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '}':
			// Closing brace with no opener.
			return i, i + 1, true
		case '{':
			j := i + 1
			for j < len(runes) && runes[j] != '}' && runes[j] != '{' {
				j++
			}
			if j >= len(runes) || runes[j] == '{' {
				// Unclosed placeholder.
				return i, j, true
			}
			name := string(runes[i+1 : j])
			value, known := vars.Lookup(name)
			if !known {
				return i, j + 1, true
			}
			if value == "" {
				if _, soft := softDefaults[name]; !soft {
					return i, j + 1, true
				}
			}
			i = j
		}
	}
	return 0, 0, false
}

// deleteClause removes the clause containing [start, end): backwards to
// the rune after the previous sentence delimiter, forwards through the
// next sentence delimiter.
func deleteClause(runes []rune, start, end int) []rune {
	from := start
	for from > 0 && !isClauseDelim(runes[from-1]) {
		from--
	}
	to := end
	for to < len(runes) && !isClauseDelim(runes[to]) {
		to++
	}
	if to < len(runes) {
		to++
	}
	out := make([]rune, 0, len(runes)-(to-from))
	out = append(out, runes[:from]...)
	out = append(out, runes[to:]...)
	return out
}

func isClauseDelim(r rune) bool {
	return strings.ContainsRune(clauseDelims, r)
}

// substitute replaces every remaining placeholder with its value or soft
// default. Braces inside variable values are dropped so the no-brace
// output guarantee holds no matter what the caller supplies.
func substitute(runes []rune, vars models.Variables) string {
	var b strings.Builder
	b.Grow(len(runes))
	for i := 0; i < len(runes); i++ {
		if runes[i] != '{' {
			b.WriteRune(runes[i])
			continue
		}
		j := i + 1
		for j < len(runes) && runes[j] != '}' {
			j++
		}
		name := string(runes[i+1 : j])
		value, known := vars.Lookup(name)
		if !known || value == "" {
			value = softDefaults[name]
		}
		b.WriteString(stripBraces(value))
		i = j
	}
	return b.String()
}

func stripBraces(s string) string {
	if !strings.ContainsAny(s, "{}") {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == '{' || r == '}' {
			return -1
		}
		return r
	}, s)
}

var (
	longDotsRe      = regexp.MustCompile(`\.{4,}`)
	ellipsisRunRe   = regexp.MustCompile(`…{2,}`)
	bangRunRe       = regexp.MustCompile(`!{2,}`)
	questionRunRe   = regexp.MustCompile(`\?{2,}`)
	commaRunRe      = regexp.MustCompile(`,{2,}`)
	spaceRunRe      = regexp.MustCompile(`\s{2,}`)
	spaceBeforeRe   = regexp.MustCompile(`\s+([.,!?…])`)
	orphanLeadingRe = regexp.MustCompile(`^[,\s]+`)
)

// normalize cleans the artifacts clause deletion and empty defaults leave
// behind. Intentional short ellipses ("hi...") are preserved; only runs
// beyond the idiomatic three dots collapse.
func normalize(s string) string {
	s = longDotsRe.ReplaceAllString(s, "...")
	s = ellipsisRunRe.ReplaceAllString(s, "…")
	s = bangRunRe.ReplaceAllString(s, "!")
	s = questionRunRe.ReplaceAllString(s, "?")
	s = commaRunRe.ReplaceAllString(s, ",")
	s = spaceRunRe.ReplaceAllString(s, " ")
	s = spaceBeforeRe.ReplaceAllString(s, "$1")
	s = orphanLeadingRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
