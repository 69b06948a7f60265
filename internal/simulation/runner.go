package simulation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/luminathea/reflex/internal/config"
	"github.com/luminathea/reflex/internal/engine"
	"github.com/luminathea/reflex/internal/models"
	"github.com/luminathea/reflex/internal/store"
)

// defaultRandSeed keeps unseeded scenarios reproducible.
const defaultRandSeed = 42

// Runner executes scenarios against a real engine on an in-memory
// backend. The zero value is ready to use.
type Runner struct {
	// Logger receives engine logs during the run; nil discards them.
	Logger *slog.Logger
}

// Run executes the scenario with a default Runner.
func Run(scenario Scenario) (Result, error) {
	return (&Runner{}).Run(scenario)
}

// Run executes the scenario and returns the collected results.
func (r *Runner) Run(scenario Scenario) (Result, error) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.Backend = store.BackendMemory
	cfg.Store.SeedOnEmpty = scenario.Seed
	if scenario.Capacity > 0 {
		cfg.Store.Capacity = scenario.Capacity
	}
	if scenario.EvaluateEvery > 0 {
		cfg.Autonomy.EvaluateEvery = scenario.EvaluateEvery
	}
	if scenario.AuditInterval > 0 {
		cfg.Autonomy.AuditInterval = scenario.AuditInterval
	}

	mem := store.NewMemoryStore()
	if scenario.InitialPatterns != nil {
		if err := mem.SavePatterns(ctx, *scenario.InitialPatterns); err != nil {
			return Result{}, fmt.Errorf("failed to install initial patterns: %w", err)
		}
	}
	if scenario.InitialController != nil {
		if err := mem.SaveController(ctx, *scenario.InitialController); err != nil {
			return Result{}, fmt.Errorf("failed to install initial controller: %w", err)
		}
	}

	randSeed := scenario.RandSeed
	if randSeed == 0 {
		randSeed = defaultRandSeed
	}

	eng, err := engine.Open(ctx, cfg, r.Logger, mem, engine.WithRandSeed(randSeed))
	if err != nil {
		return Result{}, fmt.Errorf("failed to open engine: %w", err)
	}
	defer eng.Close(ctx)

	repeat := scenario.Repeat
	if repeat < 1 {
		repeat = 1
	}

	var result Result
	for rep := 0; rep < repeat; rep++ {
		for i, turn := range scenario.Turns {
			tr := r.runTurn(eng, rep*len(scenario.Turns)+i, turn)
			result.Turns = append(result.Turns, tr)
		}
	}

	result.Changes = eng.LevelHistory()
	result.Audits = eng.Audits()
	result.Patterns = eng.Patterns()
	result.Metrics = eng.Metrics()
	result.FinalLevel = eng.Level()
	result.PatternCount = eng.PatternCount()
	return result, nil
}

// runTurn executes a single decide/report/learn exchange.
func (r *Runner) runTurn(eng *engine.Engine, index int, turn Turn) TurnResult {
	strat, tick := eng.Decide(turn.Situation, turn.Variables)
	eng.Report(turn.Quality, strat.UsesPattern(), strat.PatternID, turn.Success)

	tr := TurnResult{
		Index:    index,
		Label:    turn.Label,
		Tick:     tick,
		Strategy: strat,
	}
	if turn.Learn != "" {
		satisfaction := turn.LearnSatisfaction
		if satisfaction == 0 {
			satisfaction = turn.Quality
		}
		tr.LearnedID, tr.Learned = eng.Learn(turn.Learn, turn.Situation, satisfaction, turn.Variables)
	}
	return tr
}

// FormatTurnDebug returns a debug string for a turn result.
func FormatTurnDebug(tr TurnResult) string {
	s := fmt.Sprintf("turn %d (tick %d): %s", tr.Index, tr.Tick, tr.Strategy.Kind)
	if tr.Strategy.UsesPattern() {
		s += fmt.Sprintf(" pattern=%d score=%.3f", tr.Strategy.PatternID, tr.Strategy.Score)
	}
	if tr.Learned {
		s += fmt.Sprintf(" learned=%d", tr.LearnedID)
	}
	if tr.Label != "" {
		s += " [" + tr.Label + "]"
	}
	return s
}

// BoolPtr returns a pointer to b, for scripting explicit turn outcomes.
func BoolPtr(b bool) *bool {
	return &b
}

// RepeatTurns builds a turn list by cycling the given turns to fill the
// requested count.
func RepeatTurns(count int, turns ...Turn) []Turn {
	out := make([]Turn, count)
	for i := range out {
		out[i] = turns[i%len(turns)]
	}
	return out
}

// LevelAtEnd returns the level after the last change, or the given
// start level when nothing changed.
func LevelAtEnd(result Result, start models.Level) models.Level {
	if len(result.Changes) == 0 {
		return start
	}
	return result.Changes[len(result.Changes)-1].To
}
