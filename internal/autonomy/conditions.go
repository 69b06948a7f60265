package autonomy

import "github.com/luminathea/reflex/internal/models"

// Condition gates entry into a level. Every field must hold at once.
// A zero MinBypassRate disables the bypass check; a nonzero one fails
// automatically while no bypass has ever been attempted.
type Condition struct {
	MinTicksAtPrev  int64   // ticks spent at the level below
	MinCoverage     float64 // pattern store coverage
	MinPatternCount int     // stored patterns
	MinSatisfaction float64 // store-wide average satisfaction
	MinBypassRate   float64 // bypass_successes / bypass_attempts
}

// conditions holds the entry gate for each level above the floor. The
// ladder tightens as trust grows: early promotions only need a seeded
// store and a little runtime, full autonomy needs a broad, proven store
// and a demonstrated bypass record.
var conditions = map[models.Level]Condition{
	models.LevelGeneratorPrimary: {
		MinTicksAtPrev:  100,
		MinCoverage:     0.15,
		MinPatternCount: 20,
		MinSatisfaction: 0.55,
	},
	models.LevelHybrid: {
		MinTicksAtPrev:  500,
		MinCoverage:     0.35,
		MinPatternCount: 80,
		MinSatisfaction: 0.60,
	},
	models.LevelPatternPrimary: {
		MinTicksAtPrev:  1500,
		MinCoverage:     0.55,
		MinPatternCount: 200,
		MinSatisfaction: 0.70,
	},
	models.LevelAutonomous: {
		MinTicksAtPrev:  3000,
		MinCoverage:     0.80,
		MinPatternCount: 400,
		MinSatisfaction: 0.80,
		MinBypassRate:   0.90,
	},
}

// ConditionFor returns the entry condition for a level. The floor level
// has none; it is always reachable by demotion or reset.
func ConditionFor(level models.Level) (Condition, bool) {
	c, ok := conditions[level]
	return c, ok
}
