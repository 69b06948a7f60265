package simulation

import (
	"github.com/luminathea/reflex/internal/models"
)

// Scenario defines a complete scripted-session experiment.
type Scenario struct {
	Name string

	// Seed installs the built-in catalog into the empty store before
	// the first turn.
	Seed bool

	// InitialPatterns and InitialController, when non-nil, are written
	// to the backend before the engine opens. Use these for scenarios
	// that start mid-history instead of from scratch.
	InitialPatterns   *models.StoreState
	InitialController *models.ControllerState

	// Engine knobs. Zero values keep the defaults.
	Capacity      int
	EvaluateEvery int
	AuditInterval int
	RandSeed      int64

	// Turns is the scripted conversation. Repeat runs the whole list
	// that many times (0 and 1 both mean once).
	Turns  []Turn
	Repeat int
}

// Turn is one scripted request/response exchange.
type Turn struct {
	// Label is an optional human-readable tag for debugging output.
	Label string

	Situation models.Situation
	Variables models.Variables

	// Quality is reported for the response produced this turn.
	Quality float64

	// Success, when non-nil, is the explicit audited outcome passed to
	// report. Leave nil to let quality decide.
	Success *bool

	// Learn, when non-empty, is a generator response offered for
	// extraction after the report. LearnSatisfaction defaults to
	// Quality when zero.
	Learn             string
	LearnSatisfaction float64
}

// TurnResult captures the outcome of a single turn.
type TurnResult struct {
	Index    int
	Label    string
	Tick     int64
	Strategy models.Strategy

	// Learned reports whether this turn's Learn text produced or
	// reinforced a pattern, and which one.
	Learned   bool
	LearnedID int64
}

// Result captures all turns and the final engine state.
type Result struct {
	Turns        []TurnResult
	Changes      []models.LevelChange
	Audits       []models.AuditRecord
	Patterns     []models.Pattern
	Metrics      models.Metrics
	FinalLevel   models.Level
	PatternCount int
}
