package models

// Situation is a normalized snapshot of "what is happening" around one
// conversational turn, produced by the external emotion/time/topic
// analyzers. Each dimension is a set of strings; an empty set means the
// dimension is unconstrained and matches anything. Situations are value
// types and are never mutated after creation.
type Situation struct {
	Intents    []string `json:"intents,omitempty"`
	Emotions   []string `json:"emotions,omitempty"`
	Depths     []string `json:"depths,omitempty"`
	TimesOfDay []string `json:"times_of_day,omitempty"`
	Phases     []string `json:"phases,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
}

// IsEmpty reports whether no dimension carries any constraint.
func (s Situation) IsEmpty() bool {
	return len(s.Intents) == 0 && len(s.Emotions) == 0 && len(s.Depths) == 0 &&
		len(s.TimesOfDay) == 0 && len(s.Phases) == 0 && len(s.Keywords) == 0
}

// Clone returns a deep copy. Callers that need to hold a Situation beyond
// the current call should clone it rather than alias the slices.
func (s Situation) Clone() Situation {
	return Situation{
		Intents:    cloneStrings(s.Intents),
		Emotions:   cloneStrings(s.Emotions),
		Depths:     cloneStrings(s.Depths),
		TimesOfDay: cloneStrings(s.TimesOfDay),
		Phases:     cloneStrings(s.Phases),
		Keywords:   cloneStrings(s.Keywords),
	}
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
