package similarity

import (
	"regexp"
)

// placeholderRe matches a {variableName} token. Dedup masks every token to
// one rune so that two templates differing only in which variables they
// reference still compare as equal at those positions.
var placeholderRe = regexp.MustCompile(`\{[^{}]*\}`)

const maskRune = '\x00'

// Template computes the position-wise similarity of two templates after
// masking all placeholders: the fraction of rune positions that carry the
// same rune, over the longer masked length. This is a deliberately crude
// metric; it can both over- and under-merge templates of similar length,
// and its exact behavior is load-bearing for learned-pattern growth, so it
// must not be swapped for an edit distance.
func Template(a, b string) float64 {
	ra := mask(a)
	rb := mask(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	n := min(len(ra), len(rb))
	same := 0
	for i := 0; i < n; i++ {
		if ra[i] == rb[i] {
			same++
		}
	}
	return float64(same) / float64(max(len(ra), len(rb)))
}

func mask(s string) []rune {
	return []rune(placeholderRe.ReplaceAllString(s, string(maskRune)))
}
