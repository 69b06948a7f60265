package mcp

import (
	"github.com/luminathea/reflex/internal/models"
)

// DecideInput defines the input for the reflex_decide tool.
type DecideInput struct {
	Situation models.Situation `json:"situation" jsonschema:"Current conversational situation; every dimension is optional and an empty dimension matches anything"`
	Variables models.Variables `json:"variables,omitempty" jsonschema:"Substitution values for template placeholders such as the user's name"`
}

// DecideOutput defines the output for the reflex_decide tool.
type DecideOutput struct {
	Tick     int64           `json:"tick" jsonschema:"Logical tick this decision was issued at"`
	Level    string          `json:"level" jsonschema:"Autonomy level the decision was made under"`
	Strategy models.Strategy `json:"strategy" jsonschema:"How the host should produce the response"`
}

// ReportInput defines the input for the reflex_report tool.
type ReportInput struct {
	Quality     float64 `json:"quality" jsonschema:"Observed quality of the produced response (0.0-1.0)"`
	PatternUsed bool    `json:"pattern_used,omitempty" jsonschema:"Whether the executed strategy carried a pattern"`
	PatternID   int64   `json:"pattern_id,omitempty" jsonschema:"ID of the pattern the strategy carried"`
	Success     *bool   `json:"success,omitempty" jsonschema:"Explicit audited outcome; omit to let quality decide"`
}

// ReportOutput defines the output for the reflex_report tool.
type ReportOutput struct {
	Tick int64 `json:"tick" jsonschema:"Tick the report was recorded at"`
}

// EvaluateInput defines the input for the reflex_evaluate tool.
type EvaluateInput struct{}

// EvaluateOutput defines the output for the reflex_evaluate tool.
type EvaluateOutput struct {
	Level   string              `json:"level" jsonschema:"Autonomy level after the evaluation"`
	Changed bool                `json:"changed" jsonschema:"Whether the level moved"`
	Change  *models.LevelChange `json:"change,omitempty" jsonschema:"The promotion or demotion when one happened"`
}

// MetricsInput defines the input for the reflex_metrics tool.
type MetricsInput struct{}

// MetricsOutput defines the output for the reflex_metrics tool.
type MetricsOutput struct {
	Metrics  models.Metrics `json:"metrics" jsonschema:"Level, coverage, confidence, and usage counters"`
	Tick     int64          `json:"tick" jsonschema:"Current logical tick"`
	Patterns int            `json:"patterns" jsonschema:"Number of stored patterns"`
}

// LearnInput defines the input for the reflex_learn tool.
type LearnInput struct {
	Response     string           `json:"response" jsonschema:"Generator response text to extract a template from"`
	Situation    models.Situation `json:"situation" jsonschema:"Situation the response was produced for"`
	Satisfaction float64          `json:"satisfaction" jsonschema:"User satisfaction with the response (0.0-1.0)"`
	Variables    models.Variables `json:"variables,omitempty" jsonschema:"Values to parameterize out of the response text"`
}

// LearnOutput defines the output for the reflex_learn tool.
type LearnOutput struct {
	Learned   bool   `json:"learned" jsonschema:"Whether the response produced or reinforced a pattern"`
	PatternID int64  `json:"pattern_id,omitempty" jsonschema:"ID of the affected pattern"`
	Message   string `json:"message" jsonschema:"Human-readable result message"`
}

// PatternsInput defines the input for the reflex_patterns tool.
type PatternsInput struct {
	Origin string `json:"origin,omitempty" jsonschema:"Filter by origin: 'seed' or 'learned'"`
	Top    int    `json:"top,omitempty" jsonschema:"Return only the N most used patterns"`
}

// PatternsOutput defines the output for the reflex_patterns tool.
type PatternsOutput struct {
	Patterns []PatternSummary `json:"patterns" jsonschema:"Stored patterns in list form"`
	Count    int              `json:"count" jsonschema:"Number of patterns returned"`
}

// PatternSummary provides the list view of a stored pattern.
type PatternSummary struct {
	ID              int64    `json:"id"`
	Template        string   `json:"template"`
	Intents         []string `json:"intents,omitempty"`
	Origin          string   `json:"origin"`
	UseCount        int      `json:"use_count"`
	SuccessCount    int      `json:"success_count"`
	AvgSatisfaction float64  `json:"avg_satisfaction"`
	LastUsed        int64    `json:"last_used"`
}
