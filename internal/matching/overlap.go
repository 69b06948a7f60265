package matching

import (
	"github.com/luminathea/reflex/internal/models"
)

// Overlap measures how much two situations constrain the same ground, as
// the mean of per-dimension Jaccard overlap across the six dimensions. A
// dimension where either side is unconstrained contributes a flat 0.5
// credit. Used by duplicate detection, not by match scoring.
func Overlap(a, b models.Situation) float64 {
	sum := jaccard(a.Intents, b.Intents)
	sum += jaccard(a.Emotions, b.Emotions)
	sum += jaccard(a.Depths, b.Depths)
	sum += jaccard(a.TimesOfDay, b.TimesOfDay)
	sum += jaccard(a.Phases, b.Phases)
	sum += jaccard(a.Keywords, b.Keywords)
	return sum / 6
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.5
	}
	union := make(map[string]bool, len(a)+len(b))
	inA := make(map[string]bool, len(a))
	for _, x := range a {
		union[x] = true
		inA[x] = true
	}
	inter := 0
	for _, y := range b {
		if !union[y] {
			union[y] = true
		}
	}
	seen := make(map[string]bool, len(b))
	for _, y := range b {
		if inA[y] && !seen[y] {
			inter++
			seen[y] = true
		}
	}
	return float64(inter) / float64(len(union))
}
