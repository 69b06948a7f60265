// Package autonomy implements the level controller that decides, per
// request, how much to trust stored patterns over the external
// generator. Trust is earned gradually through quality feedback and
// store growth, and withdrawn quickly when quality drops.
package autonomy

import (
	"github.com/luminathea/reflex/internal/constants"
	"github.com/luminathea/reflex/internal/models"
	"github.com/luminathea/reflex/internal/patterns"
)

// Controller owns the autonomy level and its counters. It is not safe
// for concurrent use; the engine serializes access to it.
type Controller struct {
	store *patterns.Store

	level            models.Level
	levelEnteredTick int64

	generatorCalls  int64
	patternCalls    int64
	bypassCount     int64
	bypassAttempts  int64
	bypassSuccesses int64

	quality       []float64
	lastAuditTick int64
	audits        []models.AuditRecord
	auditInterval int64
}

// Option configures a Controller at construction time.
type Option func(*Controller)

// WithAuditInterval overrides how many ticks pass between quality
// audits. Values below 1 are ignored.
func WithAuditInterval(n int64) Option {
	return func(c *Controller) {
		if n > 0 {
			c.auditInterval = n
		}
	}
}

// New creates a controller at the FullGenerator floor.
func New(store *patterns.Store, opts ...Option) *Controller {
	c := &Controller{
		store:         store,
		level:         models.LevelFullGenerator,
		auditInterval: constants.AuditInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Decide picks the response strategy for one request. The pattern store
// is always queried first, even at levels that ignore the result, so
// usage stats and the recently-used ring advance uniformly and the
// store "practices" matching long before its output is trusted.
func (c *Controller) Decide(situation models.Situation, vars models.Variables, tick int64) models.Strategy {
	match, found := c.store.FindBestMatch(situation, vars, tick)

	switch c.level {
	case models.LevelGeneratorPrimary:
		if found && match.Score > constants.HintMatchThreshold {
			c.generatorCalls++
			c.patternCalls++
			return models.Strategy{
				Kind:      models.StrategyGeneratorWithHint,
				PatternID: match.PatternID,
				Score:     match.Score,
				Template:  match.Template,
			}
		}
	case models.LevelHybrid:
		if found && match.Score > constants.DraftMatchThreshold {
			c.generatorCalls++
			c.patternCalls++
			return models.Strategy{
				Kind:      models.StrategyPatternDraft,
				PatternID: match.PatternID,
				Score:     match.Score,
				Template:  match.Template,
			}
		}
	case models.LevelPatternPrimary:
		if found && match.Score > constants.AuditMatchThreshold {
			c.generatorCalls++
			c.patternCalls++
			return models.Strategy{
				Kind:      models.StrategyPatternWithAudit,
				PatternID: match.PatternID,
				Score:     match.Score,
				Text:      match.Text,
			}
		}
	case models.LevelAutonomous:
		if found && match.Score > constants.BypassMatchThreshold {
			c.patternCalls++
			c.bypassCount++
			c.bypassAttempts++
			return models.Strategy{
				Kind:      models.StrategyPurePattern,
				PatternID: match.PatternID,
				Score:     match.Score,
				Text:      match.Text,
			}
		}
	}

	c.generatorCalls++
	return models.Strategy{Kind: models.StrategyGeneratorOnly}
}

// Report records the observed quality of one response. When a pattern
// was used the outcome also feeds the store: success defaults to a
// quality check unless the caller audited the response and says
// otherwise. Explicit successes count toward the bypass record.
func (c *Controller) Report(quality float64, patternUsed bool, patternID int64, success *bool) {
	c.quality = append(c.quality, quality)
	if len(c.quality) > constants.QualityWindowSize {
		c.quality = c.quality[1:]
	}

	if !patternUsed {
		return
	}
	ok := quality > constants.SuccessQualityFloor
	if success != nil {
		ok = *success
	}
	c.store.Feedback(patternID, ok, quality)
	if success != nil && *success {
		c.bypassSuccesses++
	}
}

// Evaluate runs the periodic level check. Audits fire on their own
// cadence and trigger a store cull. Demotion is checked before
// promotion and the two are mutually exclusive: a call that wants to
// demote never promotes, even when it is already at the floor with
// nowhere to go. Returns the level change, if any.
func (c *Controller) Evaluate(tick int64) *models.LevelChange {
	if c.auditInterval > 0 && tick-c.lastAuditTick >= c.auditInterval {
		c.audits = append(c.audits, models.AuditRecord{
			Tick:       tick,
			AvgQuality: mean(c.quality),
			Level:      c.level,
		})
		if len(c.audits) > constants.AuditHistorySize {
			c.audits = c.audits[1:]
		}
		c.lastAuditTick = tick
		c.store.CullLowQuality()
	}

	if reason, wanted := c.demotionReason(); wanted {
		if c.level == models.LevelFullGenerator {
			return nil
		}
		from := c.level
		c.level = c.level.Prev()
		c.levelEnteredTick = tick
		c.quality = c.quality[:0]
		return &models.LevelChange{From: from, To: c.level, Tick: tick, Reason: reason}
	}

	return c.checkPromotion(tick)
}

// demotionReason compares recent quality against the longer history.
// Too few samples means no judgment either way.
func (c *Controller) demotionReason() (string, bool) {
	if len(c.quality) < constants.DemotionMinSamples {
		return "", false
	}
	recentN := constants.DemotionRecentWindow
	if recentN > len(c.quality) {
		recentN = len(c.quality)
	}
	recent := c.quality[len(c.quality)-recentN:]
	older := c.quality[:len(c.quality)-recentN]

	recentMean := mean(recent)
	if recentMean < constants.DemotionFloor {
		return "recent quality below floor", true
	}
	if len(older) > 0 && mean(older)-recentMean > constants.DemotionDrop {
		return "quality drop against history", true
	}
	return "", false
}

// checkPromotion advances one level when the next level's entry
// condition is fully satisfied. Missing or empty metrics read as zero
// and simply fail the gate.
func (c *Controller) checkPromotion(tick int64) *models.LevelChange {
	next := c.level.Next()
	if next == c.level {
		return nil
	}
	cond, ok := ConditionFor(next)
	if !ok {
		return nil
	}
	if tick-c.levelEnteredTick < cond.MinTicksAtPrev {
		return nil
	}
	if c.store.Coverage() < cond.MinCoverage {
		return nil
	}
	if c.store.Len() < cond.MinPatternCount {
		return nil
	}
	if c.store.AvgSatisfaction() < cond.MinSatisfaction {
		return nil
	}
	if cond.MinBypassRate > 0 {
		if c.bypassAttempts == 0 {
			return nil
		}
		if float64(c.bypassSuccesses)/float64(c.bypassAttempts) < cond.MinBypassRate {
			return nil
		}
	}

	from := c.level
	c.level = next
	c.levelEnteredTick = tick
	return &models.LevelChange{From: from, To: next, Tick: tick, Reason: "promotion conditions met"}
}

// ResetToFullGenerator drops the controller back to the floor and
// clears all accumulated trust. A safety hatch for the host after a
// catastrophic audit.
func (c *Controller) ResetToFullGenerator(tick int64) {
	c.level = models.LevelFullGenerator
	c.levelEnteredTick = tick
	c.generatorCalls = 0
	c.patternCalls = 0
	c.bypassCount = 0
	c.bypassAttempts = 0
	c.bypassSuccesses = 0
	c.quality = c.quality[:0]
	c.lastAuditTick = 0
	c.audits = c.audits[:0]
}

// CurrentLevel returns the active autonomy level.
func (c *Controller) CurrentLevel() models.Level {
	return c.level
}

// Audits returns a copy of the bounded audit history, oldest first.
func (c *Controller) Audits() []models.AuditRecord {
	out := make([]models.AuditRecord, len(c.audits))
	copy(out, c.audits)
	return out
}

// Metrics summarizes the controller and its store for observability.
// Confidence is the store-wide average satisfaction.
func (c *Controller) Metrics() models.Metrics {
	return models.Metrics{
		Level:          c.level,
		Coverage:       c.store.Coverage(),
		Confidence:     c.store.AvgSatisfaction(),
		GeneratorCalls: c.generatorCalls,
		PatternCalls:   c.patternCalls,
		BypassCount:    c.bypassCount,
		AvgQuality:     mean(c.quality),
	}
}

// State captures the controller for persistence.
func (c *Controller) State() models.ControllerState {
	st := models.ControllerState{
		Level:            c.level,
		LevelEnteredTick: c.levelEnteredTick,
		GeneratorCalls:   c.generatorCalls,
		PatternCalls:     c.patternCalls,
		BypassCount:      c.bypassCount,
		BypassAttempts:   c.bypassAttempts,
		BypassSuccesses:  c.bypassSuccesses,
		QualityWindow:    make([]float64, len(c.quality)),
		LastAuditTick:    c.lastAuditTick,
		Audits:           make([]models.AuditRecord, len(c.audits)),
	}
	copy(st.QualityWindow, c.quality)
	copy(st.Audits, c.audits)
	return st
}

// Restore replaces the controller state from a persisted document.
// Out-of-range values are repaired: negative counters become zero and
// over-long rings are trimmed to their bounds, keeping the newest
// entries.
func (c *Controller) Restore(st models.ControllerState) {
	c.level = st.Level
	c.levelEnteredTick = clampNonNegative(st.LevelEnteredTick)
	c.generatorCalls = clampNonNegative(st.GeneratorCalls)
	c.patternCalls = clampNonNegative(st.PatternCalls)
	c.bypassCount = clampNonNegative(st.BypassCount)
	c.bypassAttempts = clampNonNegative(st.BypassAttempts)
	c.bypassSuccesses = clampNonNegative(st.BypassSuccesses)
	c.lastAuditTick = clampNonNegative(st.LastAuditTick)

	c.quality = append(c.quality[:0], st.QualityWindow...)
	if len(c.quality) > constants.QualityWindowSize {
		c.quality = c.quality[len(c.quality)-constants.QualityWindowSize:]
	}
	c.audits = append(c.audits[:0], st.Audits...)
	if len(c.audits) > constants.AuditHistorySize {
		c.audits = c.audits[len(c.audits)-constants.AuditHistorySize:]
	}
}

func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
