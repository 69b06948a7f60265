package models

import (
	"encoding/json"
)

// Level is a point on the ordered autonomy scale describing how much the
// external generator is trusted or bypassed. Promotion moves exactly one
// step up, demotion exactly one step down.
type Level int

const (
	// LevelFullGenerator delegates every response to the generator.
	LevelFullGenerator Level = iota
	// LevelGeneratorPrimary still calls the generator but passes a strong
	// pattern match along as a hint.
	LevelGeneratorPrimary
	// LevelHybrid drafts from a pattern and has the generator refine it.
	LevelHybrid
	// LevelPatternPrimary answers from patterns with a generator audit.
	LevelPatternPrimary
	// LevelAutonomous answers from patterns alone for known situations.
	LevelAutonomous
)

const levelCount = 5

// String returns the stable snake_case name used in logs and persistence.
func (l Level) String() string {
	switch l {
	case LevelFullGenerator:
		return "full_generator"
	case LevelGeneratorPrimary:
		return "generator_primary"
	case LevelHybrid:
		return "hybrid"
	case LevelPatternPrimary:
		return "pattern_primary"
	case LevelAutonomous:
		return "autonomous"
	default:
		return "unknown"
	}
}

// ParseLevel maps a persisted name back to a Level. Unknown names fall
// back to LevelFullGenerator: a corrupt level must degrade toward the
// generator, never fail the load.
func ParseLevel(s string) Level {
	switch s {
	case "generator_primary":
		return LevelGeneratorPrimary
	case "hybrid":
		return LevelHybrid
	case "pattern_primary":
		return LevelPatternPrimary
	case "autonomous":
		return LevelAutonomous
	default:
		return LevelFullGenerator
	}
}

// Next returns the level one step up, or the same level at the top.
func (l Level) Next() Level {
	if l >= levelCount-1 {
		return levelCount - 1
	}
	return l + 1
}

// Prev returns the level one step down, or the same level at the bottom.
func (l Level) Prev() Level {
	if l <= 0 {
		return 0
	}
	return l - 1
}

// MarshalJSON encodes the level as its string name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts a string name, falling back to full_generator for
// anything unrecognized.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*l = LevelFullGenerator
		return nil
	}
	*l = ParseLevel(s)
	return nil
}

// LevelChange describes one promotion or demotion.
type LevelChange struct {
	From   Level  `json:"from"`
	To     Level  `json:"to"`
	Tick   int64  `json:"tick"`
	Reason string `json:"reason"`
}

// AuditRecord is an observability snapshot taken at audit cadence. It is
// never consulted by the promotion/demotion logic.
type AuditRecord struct {
	Tick       int64   `json:"tick"`
	AvgQuality float64 `json:"avg_quality"`
	Level      Level   `json:"level"`
}
