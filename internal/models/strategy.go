package models

// StrategyKind is the closed set of response strategies. Hosts switch
// exhaustively on it; adding a kind without updating call sites should be
// caught in review, not at runtime.
type StrategyKind string

const (
	// StrategyGeneratorOnly asks the generator for the whole response.
	StrategyGeneratorOnly StrategyKind = "generator_only"
	// StrategyGeneratorWithHint calls the generator with the matched
	// template attached as a style hint.
	StrategyGeneratorWithHint StrategyKind = "generator_with_hint"
	// StrategyPatternDraft drafts from the matched template and asks the
	// generator to refine the draft.
	StrategyPatternDraft StrategyKind = "pattern_draft"
	// StrategyPatternWithAudit answers with the expanded pattern text and
	// has the generator audit it.
	StrategyPatternWithAudit StrategyKind = "pattern_with_audit"
	// StrategyPurePattern answers with the expanded pattern text and no
	// generator call at all (a bypass).
	StrategyPurePattern StrategyKind = "pure_pattern"
)

// Strategy tells the caller how to produce the response for one request.
// PatternID, Score and the text fields are set only for pattern-bearing
// kinds: Template for hint/draft kinds, Text for audit/pure kinds.
type Strategy struct {
	Kind      StrategyKind `json:"kind"`
	PatternID int64        `json:"pattern_id,omitempty"`
	Score     float64      `json:"score,omitempty"`
	Template  string       `json:"template,omitempty"`
	Text      string       `json:"text,omitempty"`
}

// UsesPattern reports whether the strategy carries a matched pattern.
func (s Strategy) UsesPattern() bool {
	return s.Kind != StrategyGeneratorOnly
}

// CallsGenerator reports whether executing the strategy invokes the
// external generator.
func (s Strategy) CallsGenerator() bool {
	return s.Kind != StrategyPurePattern
}
