package models

// Origin records how a pattern entered the store.
type Origin string

const (
	// OriginSeed marks patterns installed from the built-in catalog.
	// Seed patterns are permanently exempt from eviction.
	OriginSeed Origin = "seed"
	// OriginLearned marks patterns extracted from generator output.
	OriginLearned Origin = "learned"
)

// MaxEmotionTags caps the display-only emotion tags carried by a pattern.
const MaxEmotionTags = 3

// Pattern is a learned or seeded (situation -> template) association with
// usage statistics. The pattern store is the sole owner; values handed to
// callers are copies. Invariant: SuccessCount <= UseCount, maintained by
// the two controlled mutation paths (match and feedback).
type Pattern struct {
	ID              int64     `json:"id"`
	Situation       Situation `json:"situation"`
	Template        string    `json:"template"`
	SuccessCount    int       `json:"success_count"`
	UseCount        int       `json:"use_count"`
	AvgSatisfaction float64   `json:"avg_satisfaction"`
	LastUsed        int64     `json:"last_used"` // logical tick, 0 = never
	Origin          Origin    `json:"origin"`
	EmotionTags     []string  `json:"emotion_tags,omitempty"`
}

// SuccessRate returns SuccessCount/UseCount, or 0 for an unused pattern.
func (p Pattern) SuccessRate() float64 {
	if p.UseCount == 0 {
		return 0
	}
	return float64(p.SuccessCount) / float64(p.UseCount)
}

// Clone returns a deep copy safe to hand outside the store.
func (p Pattern) Clone() Pattern {
	out := p
	out.Situation = p.Situation.Clone()
	out.EmotionTags = cloneStrings(p.EmotionTags)
	return out
}
