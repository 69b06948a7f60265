package models

// StoreState is the persisted form of the pattern store: the patterns
// themselves plus the id counter and the recently-used ring. It
// round-trips losslessly through JSON.
type StoreState struct {
	Patterns     []Pattern `json:"patterns"`
	NextID       int64     `json:"next_id"`
	RecentlyUsed []int64   `json:"recently_used,omitempty"`
}

// ControllerState is the persisted form of the autonomy controller.
type ControllerState struct {
	Level            Level         `json:"level"`
	LevelEnteredTick int64         `json:"level_entered_tick"`
	GeneratorCalls   int64         `json:"generator_calls"`
	PatternCalls     int64         `json:"pattern_calls"`
	BypassCount      int64         `json:"bypass_count"`
	BypassAttempts   int64         `json:"bypass_attempts"`
	BypassSuccesses  int64         `json:"bypass_successes"`
	QualityWindow    []float64     `json:"quality_window,omitempty"`
	LastAuditTick    int64         `json:"last_audit_tick"`
	Audits           []AuditRecord `json:"audits,omitempty"`
}

// Metrics is the observability summary exposed by the controller.
type Metrics struct {
	Level          Level   `json:"level"`
	Coverage       float64 `json:"coverage"`
	Confidence     float64 `json:"confidence"`
	GeneratorCalls int64   `json:"generator_calls"`
	PatternCalls   int64   `json:"pattern_calls"`
	BypassCount    int64   `json:"bypass_count"`
	AvgQuality     float64 `json:"avg_quality"`
}
