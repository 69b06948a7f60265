// Package engine ties the pattern store, autonomy controller, and
// persistence backend together behind one mutex. The core packages are
// deliberately lock-free and synchronous; the engine is the host that
// makes them safe for the CLI and MCP surfaces, owns the logical tick,
// and decides when state is loaded, evaluated, and saved.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/luminathea/reflex/internal/autonomy"
	"github.com/luminathea/reflex/internal/config"
	"github.com/luminathea/reflex/internal/logging"
	"github.com/luminathea/reflex/internal/models"
	"github.com/luminathea/reflex/internal/patterns"
	"github.com/luminathea/reflex/internal/seed"
	"github.com/luminathea/reflex/internal/store"
)

// levelHistorySize bounds the in-memory promotion/demotion history.
const levelHistorySize = 50

// Engine serializes all access to the pattern store and controller.
// Every exported method takes the one mutex; no method calls another
// exported method.
type Engine struct {
	mu sync.Mutex

	log     *slog.Logger
	trace   *logging.DecisionLogger
	persist store.Store

	store      *patterns.Store
	controller *autonomy.Controller

	evaluateEvery int64
	tick          int64
	dirty         bool
	changes       []models.LevelChange
}

// Snapshot bundles both persisted state documents into one envelope,
// used by export/import.
type Snapshot struct {
	Patterns   models.StoreState      `json:"patterns"`
	Controller models.ControllerState `json:"controller"`
}

// Option configures Open.
type Option func(*openConfig)

type openConfig struct {
	storeOpts []patterns.Option
}

// WithRandSeed fixes the pattern store's draw seed. Tests and the
// simulation harness use it for reproducible runs.
func WithRandSeed(seed int64) Option {
	return func(o *openConfig) {
		o.storeOpts = append(o.storeOpts, patterns.WithRandSeed(seed))
	}
}

// Open loads persisted state into a fresh engine. An empty store is
// seeded from the built-in catalog when the config asks for it. Load
// problems reported by the backend are logged as warnings, never
// returned as errors: a damaged state file degrades to defaults.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger, persist store.Store, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var oc openConfig
	for _, opt := range opts {
		opt(&oc)
	}

	storeOpts := append([]patterns.Option{patterns.WithCapacity(cfg.Store.Capacity)}, oc.storeOpts...)
	pstore := patterns.New(storeOpts...)

	pstate, err := persist.LoadPatterns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern state: %w", err)
	}
	cstate, err := persist.LoadController(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load controller state: %w", err)
	}
	for _, w := range persist.Warnings() {
		log.Warn("state loaded with defaults", "problem", w)
	}

	pstore.Restore(pstate)

	e := &Engine{
		log:           log,
		persist:       persist,
		store:         pstore,
		evaluateEvery: int64(cfg.Autonomy.EvaluateEvery),
		tick:          restoredTick(pstate, cstate),
	}

	if pstore.Len() == 0 && cfg.Store.SeedOnEmpty {
		n := seed.Install(pstore)
		e.dirty = true
		log.Info("installed seed patterns", "count", n)
	}

	e.controller = autonomy.New(pstore, autonomy.WithAuditInterval(int64(cfg.Autonomy.AuditInterval)))
	e.controller.Restore(cstate)

	if cfg.Logging.DecisionLog {
		dir, dirErr := store.ResolveDataDir(cfg.DataDir)
		if dirErr != nil {
			log.Warn("decision log disabled", "error", dirErr)
		} else {
			e.trace = logging.NewDecisionLogger(dir, true)
		}
	}

	log.Info("engine ready",
		"level", e.controller.CurrentLevel().String(),
		"patterns", pstore.Len(),
		"tick", e.tick)
	return e, nil
}

// restoredTick recovers the logical clock from persisted state: ticks
// are not stored directly, so the engine resumes past the newest tick
// any document refers to.
func restoredTick(ps models.StoreState, cs models.ControllerState) int64 {
	tick := cs.LevelEnteredTick
	if cs.LastAuditTick > tick {
		tick = cs.LastAuditTick
	}
	for _, p := range ps.Patterns {
		if p.LastUsed > tick {
			tick = p.LastUsed
		}
	}
	if tick < 0 {
		tick = 0
	}
	return tick
}

// Decide advances the tick and picks the response strategy for one
// request. Level evaluation runs automatically every evaluate_every
// decides, so hosts that never call Evaluate still promote and demote.
// Returns the strategy and the tick it was issued at.
func (e *Engine) Decide(situation models.Situation, vars models.Variables) (models.Strategy, int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tick++
	strat := e.controller.Decide(situation, vars, e.tick)
	e.dirty = true
	e.trace.Log(map[string]any{
		"event":      "decide",
		"tick":       e.tick,
		"level":      e.controller.CurrentLevel().String(),
		"kind":       string(strat.Kind),
		"pattern_id": strat.PatternID,
		"score":      strat.Score,
	})

	if e.evaluateEvery > 0 && e.tick%e.evaluateEvery == 0 {
		e.evaluateLocked()
	}
	return strat, e.tick
}

// Report records the observed quality of the response produced for the
// last Decide. At most one Report per Decide.
func (e *Engine) Report(quality float64, patternUsed bool, patternID int64, success *bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.controller.Report(quality, patternUsed, patternID, success)
	e.dirty = true
	event := map[string]any{
		"event":        "report",
		"tick":         e.tick,
		"quality":      quality,
		"pattern_used": patternUsed,
	}
	if patternUsed {
		event["pattern_id"] = patternID
	}
	if success != nil {
		event["success"] = *success
	}
	e.trace.Log(event)
}

// Learn extracts a reusable template from a well-received response.
// Returns the affected pattern ID and whether anything was learned.
func (e *Engine) Learn(responseText string, situation models.Situation, satisfaction float64, vars models.Variables) (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, learned := e.store.ExtractAndStore(responseText, situation, satisfaction, vars)
	if learned {
		e.dirty = true
		e.trace.Log(map[string]any{
			"event":      "learn",
			"tick":       e.tick,
			"pattern_id": id,
		})
	}
	return id, learned
}

// Feedback applies an explicit outcome to one pattern by ID.
func (e *Engine) Feedback(id int64, success bool, satisfaction float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.store.Get(id); !ok {
		return fmt.Errorf("no pattern with id %d", id)
	}
	e.store.Feedback(id, success, satisfaction)
	e.dirty = true
	return nil
}

// Evaluate runs the level check at the current tick and returns the
// change, if any. Decide already does this on a cadence; this is for
// hosts that want an explicit checkpoint.
func (e *Engine) Evaluate() *models.LevelChange {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.evaluateLocked()
}

func (e *Engine) evaluateLocked() *models.LevelChange {
	auditsBefore := lastAuditTick(e.controller.Audits())
	change := e.controller.Evaluate(e.tick)

	if after := lastAuditTick(e.controller.Audits()); after != auditsBefore {
		e.dirty = true
		audits := e.controller.Audits()
		rec := audits[len(audits)-1]
		e.trace.Log(map[string]any{
			"event":       "audit",
			"tick":        rec.Tick,
			"avg_quality": rec.AvgQuality,
			"level":       rec.Level.String(),
		})
	}
	if change != nil {
		e.dirty = true
		e.recordChange(*change)
	}
	e.trace.Log(map[string]any{
		"event":   "evaluate",
		"tick":    e.tick,
		"level":   e.controller.CurrentLevel().String(),
		"changed": change != nil,
	})
	return change
}

func lastAuditTick(audits []models.AuditRecord) int64 {
	if len(audits) == 0 {
		return -1
	}
	return audits[len(audits)-1].Tick
}

// recordChange appends to the bounded level history and logs the move.
func (e *Engine) recordChange(change models.LevelChange) {
	e.changes = append(e.changes, change)
	if len(e.changes) > levelHistorySize {
		e.changes = e.changes[len(e.changes)-levelHistorySize:]
	}
	e.log.Info("autonomy level changed",
		"from", change.From.String(),
		"to", change.To.String(),
		"tick", change.Tick,
		"reason", change.Reason)
	e.trace.Log(map[string]any{
		"event":  "level_change",
		"tick":   change.Tick,
		"from":   change.From.String(),
		"to":     change.To.String(),
		"reason": change.Reason,
	})
}

// Reset drops the controller back to the FullGenerator floor.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	from := e.controller.CurrentLevel()
	e.controller.ResetToFullGenerator(e.tick)
	if from != models.LevelFullGenerator {
		e.recordChange(models.LevelChange{
			From:   from,
			To:     models.LevelFullGenerator,
			Tick:   e.tick,
			Reason: "manual reset",
		})
	}
	e.dirty = true
}

// Cull removes low-quality learned patterns and returns how many went.
func (e *Engine) Cull() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := e.store.CullLowQuality()
	if n > 0 {
		e.dirty = true
	}
	return n
}

// Rank scores a situation against the store without any side effects.
func (e *Engine) Rank(situation models.Situation, vars models.Variables, n int) []patterns.Candidate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Rank(situation, vars, n)
}

// Metrics returns the controller's observability summary.
func (e *Engine) Metrics() models.Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.controller.Metrics()
}

// Level returns the current autonomy level.
func (e *Engine) Level() models.Level {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.controller.CurrentLevel()
}

// Tick returns the logical clock.
func (e *Engine) Tick() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// PatternCount returns the number of stored patterns.
func (e *Engine) PatternCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Len()
}

// Patterns returns copies of all stored patterns, ordered by ID.
func (e *Engine) Patterns() []models.Pattern {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Patterns()
}

// Pattern returns a copy of one pattern by ID.
func (e *Engine) Pattern(id int64) (models.Pattern, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Get(id)
}

// Audits returns the bounded audit history, oldest first.
func (e *Engine) Audits() []models.AuditRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.controller.Audits()
}

// LevelHistory returns the promotions and demotions seen this session,
// oldest first.
func (e *Engine) LevelHistory() []models.LevelChange {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.LevelChange, len(e.changes))
	copy(out, e.changes)
	return out
}

// Snapshot captures both state documents for export.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Patterns:   e.store.State(),
		Controller: e.controller.State(),
	}
}

// RestoreSnapshot replaces all engine state from an exported envelope
// and persists it immediately.
func (e *Engine) RestoreSnapshot(ctx context.Context, snap Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.Restore(snap.Patterns)
	e.controller.Restore(snap.Controller)
	e.tick = restoredTick(snap.Patterns, snap.Controller)
	e.dirty = true
	return e.saveLocked(ctx)
}

// Save persists both state documents if anything changed since the
// last save.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saveLocked(ctx)
}

func (e *Engine) saveLocked(ctx context.Context) error {
	if !e.dirty {
		return nil
	}
	if err := e.persist.SavePatterns(ctx, e.store.State()); err != nil {
		return fmt.Errorf("failed to save pattern state: %w", err)
	}
	if err := e.persist.SaveController(ctx, e.controller.State()); err != nil {
		return fmt.Errorf("failed to save controller state: %w", err)
	}
	e.dirty = false
	return nil
}

// Close saves pending state and releases the backend and trace log.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	saveErr := e.saveLocked(ctx)
	e.trace.Close()
	if err := e.persist.Close(); err != nil && saveErr == nil {
		saveErr = fmt.Errorf("failed to close store: %w", err)
	}
	return saveErr
}
