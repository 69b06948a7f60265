package simulation

import (
	"testing"

	"github.com/luminathea/reflex/internal/models"
)

// AssertFinalLevel asserts the engine ended the run at the given level.
func AssertFinalLevel(t *testing.T, result Result, want models.Level) {
	t.Helper()
	if result.FinalLevel != want {
		t.Errorf("AssertFinalLevel: final level = %s, want %s (changes: %v)",
			result.FinalLevel, want, result.Changes)
	}
}

// AssertNoLevelChanges asserts the run produced no promotions or
// demotions at all.
func AssertNoLevelChanges(t *testing.T, result Result) {
	t.Helper()
	if len(result.Changes) != 0 {
		t.Errorf("AssertNoLevelChanges: got %d level changes, want 0: %v",
			len(result.Changes), result.Changes)
	}
}

// AssertPromotionTo asserts that some change in the run promoted into
// the given level.
func AssertPromotionTo(t *testing.T, result Result, to models.Level) {
	t.Helper()
	for _, c := range result.Changes {
		if c.To == to && c.To > c.From {
			return
		}
	}
	t.Errorf("AssertPromotionTo: no promotion to %s found (changes: %v)", to, result.Changes)
}

// AssertDemotionTo asserts that some change in the run demoted into the
// given level.
func AssertDemotionTo(t *testing.T, result Result, to models.Level) {
	t.Helper()
	for _, c := range result.Changes {
		if c.To == to && c.To < c.From {
			return
		}
	}
	t.Errorf("AssertDemotionTo: no demotion to %s found (changes: %v)", to, result.Changes)
}

// AssertLevelNeverAbove asserts that no change in the run entered a
// level above max.
func AssertLevelNeverAbove(t *testing.T, result Result, max models.Level) {
	t.Helper()
	for _, c := range result.Changes {
		if c.To > max {
			t.Errorf("AssertLevelNeverAbove: change at tick %d entered %s, above %s",
				c.Tick, c.To, max)
		}
	}
}

// AssertPatternCount asserts the final store size.
func AssertPatternCount(t *testing.T, result Result, want int) {
	t.Helper()
	if result.PatternCount != want {
		t.Errorf("AssertPatternCount: pattern count = %d, want %d", result.PatternCount, want)
	}
}

// AssertAuditSpacing asserts that consecutive audits are at least
// minInterval ticks apart.
func AssertAuditSpacing(t *testing.T, result Result, minInterval int64) {
	t.Helper()
	for i := 1; i < len(result.Audits); i++ {
		gap := result.Audits[i].Tick - result.Audits[i-1].Tick
		if gap < minInterval {
			t.Errorf("AssertAuditSpacing: audits %d ticks apart (ticks %d and %d), want >= %d",
				gap, result.Audits[i-1].Tick, result.Audits[i].Tick, minInterval)
		}
	}
}

// AssertMonotonicCounters asserts success_count <= use_count for every
// surviving pattern.
func AssertMonotonicCounters(t *testing.T, result Result) {
	t.Helper()
	for _, p := range result.Patterns {
		if p.SuccessCount > p.UseCount {
			t.Errorf("AssertMonotonicCounters: pattern %d has success %d > use %d",
				p.ID, p.SuccessCount, p.UseCount)
		}
	}
}

// CountStrategy counts turns that resolved to the given strategy kind.
func CountStrategy(result Result, kind models.StrategyKind) int {
	count := 0
	for _, tr := range result.Turns {
		if tr.Strategy.Kind == kind {
			count++
		}
	}
	return count
}

// CountLearned counts turns whose Learn text produced or reinforced a
// pattern.
func CountLearned(result Result) int {
	count := 0
	for _, tr := range result.Turns {
		if tr.Learned {
			count++
		}
	}
	return count
}

// FindPattern returns the final state of a pattern by ID.
func FindPattern(result Result, id int64) (models.Pattern, bool) {
	for _, p := range result.Patterns {
		if p.ID == id {
			return p, true
		}
	}
	return models.Pattern{}, false
}
