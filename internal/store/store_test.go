package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/luminathea/reflex/internal/models"
)

// sampleStoreState returns a pattern document with every field
// populated, for round-trip checks.
func sampleStoreState() models.StoreState {
	return models.StoreState{
		Patterns: []models.Pattern{
			{
				ID: 1,
				Situation: models.Situation{
					Intents:    []string{"greeting"},
					Emotions:   []string{"joy", "warmth"},
					Depths:     []string{"casual"},
					TimesOfDay: []string{"morning"},
					Phases:     []string{"friend"},
					Keywords:   []string{"coffee"},
				},
				Template:        "good morning, {userName}...",
				SuccessCount:    3,
				UseCount:        5,
				AvgSatisfaction: 0.72,
				LastUsed:        41,
				Origin:          models.OriginSeed,
				EmotionTags:     []string{"joy"},
			},
			{
				ID:              4,
				Situation:       models.Situation{Intents: []string{"farewell"}},
				Template:        "see you...",
				SuccessCount:    1,
				UseCount:        2,
				AvgSatisfaction: 0.61,
				LastUsed:        40,
				Origin:          models.OriginLearned,
			},
		},
		NextID:       5,
		RecentlyUsed: []int64{1, 4},
	}
}

func sampleControllerState() models.ControllerState {
	return models.ControllerState{
		Level:            models.LevelHybrid,
		LevelEnteredTick: 600,
		GeneratorCalls:   120,
		PatternCalls:     48,
		BypassCount:      2,
		BypassAttempts:   2,
		BypassSuccesses:  1,
		QualityWindow:    []float64{0.7, 0.8, 0.65},
		LastAuditTick:    600,
		Audits: []models.AuditRecord{
			{Tick: 200, AvgQuality: 0.66, Level: models.LevelGeneratorPrimary},
			{Tick: 400, AvgQuality: 0.71, Level: models.LevelHybrid},
		},
	}
}

// openFuncs enumerates every backend so the shared contract tests run
// against all of them.
func openFuncs(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"file": func(t *testing.T) Store {
			s, err := NewFileStore(t.TempDir())
			if err != nil {
				t.Fatalf("NewFileStore() error = %v", err)
			}
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(t.TempDir())
			if err != nil {
				t.Fatalf("NewSQLiteStore() error = %v", err)
			}
			return s
		},
	}
}

func TestLoadDefaultsWhenEmpty(t *testing.T) {
	for name, open := range openFuncs(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()
			ctx := context.Background()

			ps, err := s.LoadPatterns(ctx)
			if err != nil {
				t.Fatalf("LoadPatterns() error = %v", err)
			}
			if len(ps.Patterns) != 0 {
				t.Errorf("Patterns len = %d, want 0", len(ps.Patterns))
			}
			if ps.NextID != 1 {
				t.Errorf("NextID = %d, want 1", ps.NextID)
			}

			cs, err := s.LoadController(ctx)
			if err != nil {
				t.Fatalf("LoadController() error = %v", err)
			}
			if cs.Level != models.LevelFullGenerator {
				t.Errorf("Level = %s, want %s", cs.Level, models.LevelFullGenerator)
			}
			if len(s.Warnings()) != 0 {
				t.Errorf("Warnings = %v, want none for a fresh store", s.Warnings())
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for name, open := range openFuncs(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()
			ctx := context.Background()

			wantPS := sampleStoreState()
			wantCS := sampleControllerState()
			if err := s.SavePatterns(ctx, wantPS); err != nil {
				t.Fatalf("SavePatterns() error = %v", err)
			}
			if err := s.SaveController(ctx, wantCS); err != nil {
				t.Fatalf("SaveController() error = %v", err)
			}

			gotPS, err := s.LoadPatterns(ctx)
			if err != nil {
				t.Fatalf("LoadPatterns() error = %v", err)
			}
			assertStoreStateEqual(t, gotPS, wantPS)

			gotCS, err := s.LoadController(ctx)
			if err != nil {
				t.Fatalf("LoadController() error = %v", err)
			}
			assertControllerStateEqual(t, gotCS, wantCS)
		})
	}
}

func TestSaveReplacesDocument(t *testing.T) {
	for name, open := range openFuncs(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()
			ctx := context.Background()

			if err := s.SavePatterns(ctx, sampleStoreState()); err != nil {
				t.Fatalf("SavePatterns() error = %v", err)
			}
			smaller := models.StoreState{
				Patterns: []models.Pattern{
					{ID: 9, Situation: models.Situation{Intents: []string{"play"}},
						Template: "you're on!", Origin: models.OriginLearned},
				},
				NextID: 10,
			}
			if err := s.SavePatterns(ctx, smaller); err != nil {
				t.Fatalf("second SavePatterns() error = %v", err)
			}

			got, err := s.LoadPatterns(ctx)
			if err != nil {
				t.Fatalf("LoadPatterns() error = %v", err)
			}
			if len(got.Patterns) != 1 || got.Patterns[0].ID != 9 {
				t.Errorf("Patterns = %+v, want only ID 9", got.Patterns)
			}
			if got.NextID != 10 {
				t.Errorf("NextID = %d, want 10", got.NextID)
			}
		})
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := s.SavePatterns(ctx, sampleStoreState()); err != nil {
		t.Fatalf("SavePatterns() error = %v", err)
	}
	if err := s.SaveController(ctx, sampleControllerState()); err != nil {
		t.Fatalf("SaveController() error = %v", err)
	}
	s.Close()

	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.LoadPatterns(ctx)
	if err != nil {
		t.Fatalf("LoadPatterns() error = %v", err)
	}
	assertStoreStateEqual(t, got, sampleStoreState())
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := s.SavePatterns(ctx, sampleStoreState()); err != nil {
		t.Fatalf("SavePatterns() error = %v", err)
	}
	if err := s.SaveController(ctx, sampleControllerState()); err != nil {
		t.Fatalf("SaveController() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	gotPS, err := reopened.LoadPatterns(ctx)
	if err != nil {
		t.Fatalf("LoadPatterns() error = %v", err)
	}
	assertStoreStateEqual(t, gotPS, sampleStoreState())

	gotCS, err := reopened.LoadController(ctx)
	if err != nil {
		t.Fatalf("LoadController() error = %v", err)
	}
	assertControllerStateEqual(t, gotCS, sampleControllerState())
}

func TestFileStoreCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(dir, "patterns.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()

	got, err := s.LoadPatterns(ctx)
	if err != nil {
		t.Fatalf("LoadPatterns() error = %v", err)
	}
	if len(got.Patterns) != 0 || got.NextID != 1 {
		t.Errorf("got %+v, want clean defaults", got)
	}
	if len(s.Warnings()) != 1 {
		t.Errorf("Warnings = %v, want exactly one", s.Warnings())
	}
}

func TestFileStorePartialDocument(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	// Valid JSON missing most fields: absent fields fall back to their
	// zero values without any warning.
	if err := os.WriteFile(filepath.Join(dir, "patterns.json"), []byte(`{"next_id": 7}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()

	got, err := s.LoadPatterns(ctx)
	if err != nil {
		t.Fatalf("LoadPatterns() error = %v", err)
	}
	if got.NextID != 7 {
		t.Errorf("NextID = %d, want 7", got.NextID)
	}
	if len(got.Patterns) != 0 {
		t.Errorf("Patterns len = %d, want 0", len(got.Patterns))
	}
	if len(s.Warnings()) != 0 {
		t.Errorf("Warnings = %v, want none", s.Warnings())
	}
}

func TestOpenBackends(t *testing.T) {
	tests := []struct {
		backend string
		wantErr bool
	}{
		{BackendMemory, false},
		{BackendFile, false},
		{BackendSQLite, false},
		{"", false}, // empty means file
		{"cassette-tape", true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, err := Open(tt.backend, t.TempDir())
			if tt.wantErr {
				if err == nil {
					s.Close()
					t.Fatal("Open() succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			s.Close()
		})
	}
}

func assertStoreStateEqual(t *testing.T, got, want models.StoreState) {
	t.Helper()
	if got.NextID != want.NextID {
		t.Errorf("NextID = %d, want %d", got.NextID, want.NextID)
	}
	if len(got.RecentlyUsed) != len(want.RecentlyUsed) {
		t.Fatalf("RecentlyUsed = %v, want %v", got.RecentlyUsed, want.RecentlyUsed)
	}
	for i := range got.RecentlyUsed {
		if got.RecentlyUsed[i] != want.RecentlyUsed[i] {
			t.Errorf("RecentlyUsed[%d] = %d, want %d", i, got.RecentlyUsed[i], want.RecentlyUsed[i])
		}
	}
	if len(got.Patterns) != len(want.Patterns) {
		t.Fatalf("Patterns len = %d, want %d", len(got.Patterns), len(want.Patterns))
	}
	for i := range got.Patterns {
		g, w := got.Patterns[i], want.Patterns[i]
		if g.ID != w.ID || g.Template != w.Template || g.Origin != w.Origin ||
			g.SuccessCount != w.SuccessCount || g.UseCount != w.UseCount ||
			g.AvgSatisfaction != w.AvgSatisfaction || g.LastUsed != w.LastUsed {
			t.Errorf("pattern %d = %+v, want %+v", i, g, w)
		}
		if len(g.Situation.Intents) != len(w.Situation.Intents) ||
			len(g.Situation.Keywords) != len(w.Situation.Keywords) {
			t.Errorf("pattern %d situation = %+v, want %+v", i, g.Situation, w.Situation)
		}
		if len(g.EmotionTags) != len(w.EmotionTags) {
			t.Errorf("pattern %d tags = %v, want %v", i, g.EmotionTags, w.EmotionTags)
		}
	}
}

func assertControllerStateEqual(t *testing.T, got, want models.ControllerState) {
	t.Helper()
	if got.Level != want.Level {
		t.Errorf("Level = %s, want %s", got.Level, want.Level)
	}
	if got.LevelEnteredTick != want.LevelEnteredTick {
		t.Errorf("LevelEnteredTick = %d, want %d", got.LevelEnteredTick, want.LevelEnteredTick)
	}
	if got.GeneratorCalls != want.GeneratorCalls || got.PatternCalls != want.PatternCalls {
		t.Errorf("calls = %d/%d, want %d/%d",
			got.GeneratorCalls, got.PatternCalls, want.GeneratorCalls, want.PatternCalls)
	}
	if got.BypassCount != want.BypassCount || got.BypassAttempts != want.BypassAttempts ||
		got.BypassSuccesses != want.BypassSuccesses {
		t.Errorf("bypass = %d/%d/%d, want %d/%d/%d",
			got.BypassCount, got.BypassAttempts, got.BypassSuccesses,
			want.BypassCount, want.BypassAttempts, want.BypassSuccesses)
	}
	if len(got.QualityWindow) != len(want.QualityWindow) {
		t.Fatalf("QualityWindow = %v, want %v", got.QualityWindow, want.QualityWindow)
	}
	for i := range got.QualityWindow {
		if got.QualityWindow[i] != want.QualityWindow[i] {
			t.Errorf("QualityWindow[%d] = %v, want %v", i, got.QualityWindow[i], want.QualityWindow[i])
		}
	}
	if got.LastAuditTick != want.LastAuditTick {
		t.Errorf("LastAuditTick = %d, want %d", got.LastAuditTick, want.LastAuditTick)
	}
	if len(got.Audits) != len(want.Audits) {
		t.Fatalf("Audits len = %d, want %d", len(got.Audits), len(want.Audits))
	}
	for i := range got.Audits {
		if got.Audits[i] != want.Audits[i] {
			t.Errorf("Audits[%d] = %+v, want %+v", i, got.Audits[i], want.Audits[i])
		}
	}
}
