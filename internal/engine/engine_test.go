package engine

import (
	"context"
	"testing"

	"github.com/luminathea/reflex/internal/config"
	"github.com/luminathea/reflex/internal/models"
	"github.com/luminathea/reflex/internal/seed"
	"github.com/luminathea/reflex/internal/store"
)

func noSeedConfig() *config.Config {
	cfg := config.Default()
	cfg.Store.SeedOnEmpty = false
	return cfg
}

func openTestEngine(t *testing.T, cfg *config.Config, mem *store.MemoryStore) *Engine {
	t.Helper()
	if mem == nil {
		mem = store.NewMemoryStore()
	}
	eng, err := Open(context.Background(), cfg, nil, mem, WithRandSeed(42))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return eng
}

func TestOpen_SeedsEmptyStore(t *testing.T) {
	eng := openTestEngine(t, nil, nil)

	want := len(seed.Catalog())
	if got := eng.PatternCount(); got != want {
		t.Errorf("PatternCount() = %d, want %d seeds", got, want)
	}
	if got := eng.Level(); got != models.LevelFullGenerator {
		t.Errorf("Level() = %v, want FullGenerator", got)
	}
	if got := eng.Tick(); got != 0 {
		t.Errorf("Tick() = %d, want 0", got)
	}
}

func TestOpen_SeedingDisabled(t *testing.T) {
	eng := openTestEngine(t, noSeedConfig(), nil)

	if got := eng.PatternCount(); got != 0 {
		t.Errorf("PatternCount() = %d, want 0 with seeding disabled", got)
	}
}

func TestOpen_RestoresPersistedState(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()

	mem.SavePatterns(ctx, models.StoreState{
		Patterns: []models.Pattern{{
			ID:              3,
			Situation:       models.Situation{Intents: []string{"greeting"}},
			Template:        "hey {userName}",
			UseCount:        7,
			SuccessCount:    5,
			AvgSatisfaction: 0.8,
			LastUsed:        140,
			Origin:          models.OriginLearned,
		}},
		NextID: 4,
	})
	mem.SaveController(ctx, models.ControllerState{
		Level:            models.LevelHybrid,
		LevelEnteredTick: 120,
		LastAuditTick:    100,
	})

	// Seeding stays off because the store is not empty
	eng := openTestEngine(t, config.Default(), mem)

	if got := eng.Level(); got != models.LevelHybrid {
		t.Errorf("Level() = %v, want Hybrid", got)
	}
	if got := eng.PatternCount(); got != 1 {
		t.Errorf("PatternCount() = %d, want 1 (no seeding on non-empty store)", got)
	}
	// Clock resumes past the newest persisted tick
	if got := eng.Tick(); got != 140 {
		t.Errorf("Tick() = %d, want 140", got)
	}
}

func TestRestoredTick(t *testing.T) {
	tests := []struct {
		name string
		ps   models.StoreState
		cs   models.ControllerState
		want int64
	}{
		{
			name: "all zero",
			want: 0,
		},
		{
			name: "level entered newest",
			cs:   models.ControllerState{LevelEnteredTick: 50, LastAuditTick: 30},
			want: 50,
		},
		{
			name: "audit newest",
			cs:   models.ControllerState{LevelEnteredTick: 10, LastAuditTick: 90},
			want: 90,
		},
		{
			name: "pattern use newest",
			ps: models.StoreState{Patterns: []models.Pattern{
				{ID: 1, LastUsed: 40},
				{ID: 2, LastUsed: 120},
			}},
			cs:   models.ControllerState{LevelEnteredTick: 60},
			want: 120,
		},
		{
			name: "negative repaired to zero",
			cs:   models.ControllerState{LevelEnteredTick: -5},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := restoredTick(tt.ps, tt.cs); got != tt.want {
				t.Errorf("restoredTick() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecide_AdvancesTick(t *testing.T) {
	eng := openTestEngine(t, noSeedConfig(), nil)

	for i := int64(1); i <= 3; i++ {
		strat, tick := eng.Decide(models.Situation{}, models.Variables{})
		if tick != i {
			t.Errorf("decide %d: tick = %d, want %d", i, tick, i)
		}
		if strat.Kind != models.StrategyGeneratorOnly {
			t.Errorf("decide %d: kind = %s, want generator_only at the floor", i, strat.Kind)
		}
	}
	if got := eng.Tick(); got != 3 {
		t.Errorf("Tick() = %d, want 3", got)
	}
}

func TestDecide_AutoEvaluatePromotes(t *testing.T) {
	// A seeded store satisfies the first promotion gate on its own; the
	// cadence check at tick 100 should lift the level without any
	// explicit Evaluate call.
	eng := openTestEngine(t, nil, nil)

	for i := 0; i < 100; i++ {
		eng.Decide(models.Situation{}, models.Variables{})
	}

	if got := eng.Level(); got != models.LevelGeneratorPrimary {
		t.Errorf("Level() after 100 decides = %v, want GeneratorPrimary", got)
	}

	history := eng.LevelHistory()
	if len(history) != 1 {
		t.Fatalf("LevelHistory() has %d entries, want 1", len(history))
	}
	if history[0].To != models.LevelGeneratorPrimary {
		t.Errorf("history To = %v, want GeneratorPrimary", history[0].To)
	}
	if history[0].Tick != 100 {
		t.Errorf("history Tick = %d, want 100", history[0].Tick)
	}
}

func TestReport_FeedsQualityRing(t *testing.T) {
	eng := openTestEngine(t, noSeedConfig(), nil)

	eng.Report(0.8, false, 0, nil)
	eng.Report(0.6, false, 0, nil)

	m := eng.Metrics()
	if got, want := m.AvgQuality, 0.7; got < want-0.001 || got > want+0.001 {
		t.Errorf("AvgQuality = %f, want %f", got, want)
	}
}

func TestLearn(t *testing.T) {
	eng := openTestEngine(t, noSeedConfig(), nil)

	situation := models.Situation{Intents: []string{"memory_recall"}}
	vars := models.Variables{UserName: "sam"}

	id, learned := eng.Learn("that reminds me of sam's garden story", situation, 0.8, vars)
	if !learned {
		t.Fatal("expected response to be learned")
	}
	if id == 0 {
		t.Error("expected nonzero pattern id")
	}
	if got := eng.PatternCount(); got != 1 {
		t.Errorf("PatternCount() = %d, want 1", got)
	}

	p, ok := eng.Pattern(id)
	if !ok {
		t.Fatal("learned pattern not found")
	}
	if p.Template != "that reminds me of {userName}'s garden story" {
		t.Errorf("template = %q, want parameterized form", p.Template)
	}
}

func TestLearn_RejectsLowSatisfaction(t *testing.T) {
	eng := openTestEngine(t, noSeedConfig(), nil)

	_, learned := eng.Learn("not worth keeping", models.Situation{Intents: []string{"greeting"}}, 0.5, models.Variables{})
	if learned {
		t.Error("satisfaction below the learning floor should not be learned")
	}
	if got := eng.PatternCount(); got != 0 {
		t.Errorf("PatternCount() = %d, want 0", got)
	}
}

func TestFeedback(t *testing.T) {
	eng := openTestEngine(t, noSeedConfig(), nil)

	id, _ := eng.Learn("good night, sam", models.Situation{Intents: []string{"farewell"}}, 0.9,
		models.Variables{UserName: "sam"})

	if err := eng.Feedback(id, false, 0.5); err != nil {
		t.Fatalf("Feedback failed: %v", err)
	}
	p, _ := eng.Pattern(id)
	// 0.8*0.9 + 0.2*0.5
	if got, want := p.AvgSatisfaction, 0.82; got < want-0.001 || got > want+0.001 {
		t.Errorf("AvgSatisfaction = %f, want %f", got, want)
	}

	if err := eng.Feedback(999, true, 0.9); err == nil {
		t.Error("expected error for unknown pattern id")
	}
}

func TestCull(t *testing.T) {
	ctx := context.Background()
	eng := openTestEngine(t, noSeedConfig(), nil)

	snap := Snapshot{
		Patterns: models.StoreState{
			Patterns: []models.Pattern{{
				ID:              1,
				Situation:       models.Situation{Intents: []string{"greeting"}},
				Template:        "hi there",
				UseCount:        10,
				SuccessCount:    1,
				AvgSatisfaction: 0.2,
				Origin:          models.OriginLearned,
			}},
			NextID: 2,
		},
		Controller: models.ControllerState{Level: models.LevelFullGenerator},
	}
	if err := eng.RestoreSnapshot(ctx, snap); err != nil {
		t.Fatalf("RestoreSnapshot failed: %v", err)
	}

	if got := eng.Cull(); got != 1 {
		t.Errorf("Cull() = %d, want 1", got)
	}
	if got := eng.PatternCount(); got != 0 {
		t.Errorf("PatternCount() = %d, want 0 after cull", got)
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	eng := openTestEngine(t, noSeedConfig(), nil)

	snap := Snapshot{
		Patterns:   models.StoreState{NextID: 1},
		Controller: models.ControllerState{Level: models.LevelHybrid, GeneratorCalls: 40},
	}
	if err := eng.RestoreSnapshot(ctx, snap); err != nil {
		t.Fatalf("RestoreSnapshot failed: %v", err)
	}

	eng.Reset()

	if got := eng.Level(); got != models.LevelFullGenerator {
		t.Errorf("Level() = %v, want FullGenerator after reset", got)
	}
	m := eng.Metrics()
	if m.GeneratorCalls != 0 {
		t.Errorf("GeneratorCalls = %d, want 0 after reset", m.GeneratorCalls)
	}

	history := eng.LevelHistory()
	if len(history) != 1 {
		t.Fatalf("LevelHistory() has %d entries, want 1", len(history))
	}
	if history[0].Reason != "manual reset" {
		t.Errorf("reason = %q, want 'manual reset'", history[0].Reason)
	}
}

func TestSaveOnClose(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()

	eng := openTestEngine(t, noSeedConfig(), mem)
	id, learned := eng.Learn("see you tomorrow, sam", models.Situation{Intents: []string{"farewell"}}, 0.8,
		models.Variables{UserName: "sam"})
	if !learned {
		t.Fatal("expected response to be learned")
	}
	if err := eng.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := openTestEngine(t, noSeedConfig(), mem)
	if got := reopened.PatternCount(); got != 1 {
		t.Fatalf("PatternCount() after reopen = %d, want 1", got)
	}
	if _, ok := reopened.Pattern(id); !ok {
		t.Errorf("pattern %d missing after reopen", id)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	eng := openTestEngine(t, noSeedConfig(), nil)

	eng.Learn("sweet dreams, sam", models.Situation{Intents: []string{"farewell"}}, 0.9,
		models.Variables{UserName: "sam"})
	eng.Report(0.8, false, 0, nil)
	snap := eng.Snapshot()

	other := openTestEngine(t, noSeedConfig(), nil)
	if err := other.RestoreSnapshot(ctx, snap); err != nil {
		t.Fatalf("RestoreSnapshot failed: %v", err)
	}

	if got, want := other.PatternCount(), eng.PatternCount(); got != want {
		t.Errorf("PatternCount() = %d, want %d", got, want)
	}
	if got, want := other.Metrics().AvgQuality, eng.Metrics().AvgQuality; got != want {
		t.Errorf("AvgQuality = %f, want %f", got, want)
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Capacity = -1

	_, err := Open(context.Background(), cfg, nil, store.NewMemoryStore())
	if err == nil {
		t.Error("expected error for invalid config")
	}
}
