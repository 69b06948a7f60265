package patterns

import (
	"math"
	"strings"
	"testing"

	"github.com/luminathea/reflex/internal/models"
)

func TestExtractAndStoreParameterizes(t *testing.T) {
	s := New()
	vars := models.Variables{
		UserName:        "alice",
		CurrentActivity: "reading",
	}
	situation := models.Situation{Intents: []string{"smalltalk"}, Emotions: []string{"calm"}}

	id, ok := s.ExtractAndStore("hi alice, how was reading?", situation, 0.8, vars)
	if !ok {
		t.Fatal("ExtractAndStore rejected a good response")
	}
	p, _ := s.Get(id)
	want := "hi {userName}, how was {currentActivity}?"
	if p.Template != want {
		t.Errorf("Template = %q, want %q", p.Template, want)
	}
	if p.SuccessCount != 1 || p.UseCount != 1 {
		t.Errorf("counters = %d/%d, want 1/1", p.SuccessCount, p.UseCount)
	}
	if p.AvgSatisfaction != 0.8 {
		t.Errorf("AvgSatisfaction = %v, want 0.8", p.AvgSatisfaction)
	}
	if p.Origin != models.OriginLearned {
		t.Errorf("Origin = %q, want %q", p.Origin, models.OriginLearned)
	}
	if len(p.EmotionTags) != 1 || p.EmotionTags[0] != "calm" {
		t.Errorf("EmotionTags = %v, want [calm]", p.EmotionTags)
	}
}

func TestExtractAndStoreSkipsSoftDefaults(t *testing.T) {
	s := New()
	// "you" equals the userName fallback, so substituting it would
	// shred ordinary words; the response must be stored verbatim.
	vars := models.Variables{UserName: "you"}
	id, ok := s.ExtractAndStore("thanks, that helps", models.Situation{
		Intents: []string{"gratitude"},
	}, 0.8, vars)
	if !ok {
		t.Fatal("ExtractAndStore rejected a good response")
	}
	p, _ := s.Get(id)
	if p.Template != "thanks, that helps" {
		t.Errorf("Template = %q, want unchanged text", p.Template)
	}
}

func TestExtractAndStoreRejections(t *testing.T) {
	situation := models.Situation{Intents: []string{"smalltalk"}}
	tests := []struct {
		name         string
		text         string
		satisfaction float64
		vars         models.Variables
	}{
		{
			name:         "below satisfaction floor",
			text:         "sure, sounds good",
			satisfaction: 0.59,
		},
		{
			name:         "template too long",
			text:         strings.Repeat("a", 95) + " alice " + strings.Repeat("b", 10),
			satisfaction: 0.9,
			vars:         models.Variables{UserName: "alice"},
		},
		{
			name:         "unparameterized and long",
			text:         strings.Repeat("x", 51),
			satisfaction: 0.9,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			if _, ok := s.ExtractAndStore(tt.text, situation, tt.satisfaction, tt.vars); ok {
				t.Error("ExtractAndStore accepted, want rejection")
			}
			if s.Len() != 0 {
				t.Errorf("Len = %d, want 0", s.Len())
			}
		})
	}
}

func TestExtractAndStoreBoundaryLengths(t *testing.T) {
	s := New()
	// Exactly 50 unchanged characters is still acceptable.
	text := strings.Repeat("y", 50)
	if _, ok := s.ExtractAndStore(text, models.Situation{Intents: []string{"smalltalk"}}, 0.7, models.Variables{}); !ok {
		t.Error("ExtractAndStore rejected a 50 character response")
	}
}

func TestExtractAndStoreReinforcesDuplicate(t *testing.T) {
	s := New()
	situation := models.Situation{
		Intents:  []string{"sharing"},
		Emotions: []string{"joy"},
		Depths:   []string{"casual"},
	}
	existing := &models.Pattern{
		ID:              1,
		Situation:       situation.Clone(),
		Template:        "that sounds wonderful! tell me more about your {currentActivity}.",
		UseCount:        5,
		SuccessCount:    4,
		AvgSatisfaction: 0.7,
		Origin:          models.OriginLearned,
	}
	s.Restore(models.StoreState{Patterns: []models.Pattern{*existing}, NextID: 2})

	// Same phrasing with the variable filled in: parameterization
	// recovers the stored template exactly.
	vars := models.Variables{CurrentActivity: "garden"}
	id, ok := s.ExtractAndStore("that sounds wonderful! tell me more about your garden.", situation, 0.9, vars)
	if !ok {
		t.Fatal("ExtractAndStore rejected a good response")
	}
	if id != 1 {
		t.Errorf("id = %d, want 1 (reinforced existing)", id)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1 (no duplicate stored)", s.Len())
	}

	p, _ := s.Get(1)
	if p.UseCount != 6 {
		t.Errorf("UseCount = %d, want 6", p.UseCount)
	}
	if p.SuccessCount != 5 {
		t.Errorf("SuccessCount = %d, want 5", p.SuccessCount)
	}
	// 0.8*0.7 + 0.2*0.9
	if math.Abs(p.AvgSatisfaction-0.74) > 0.001 {
		t.Errorf("AvgSatisfaction = %.3f, want 0.74", p.AvgSatisfaction)
	}
}

func TestExtractAndStoreDifferentSituationNotDuplicate(t *testing.T) {
	s := New()
	morning := models.Situation{
		Intents:    []string{"greeting"},
		Emotions:   []string{"joy"},
		Depths:     []string{"casual"},
		TimesOfDay: []string{"morning"},
		Phases:     []string{"friend"},
	}
	night := models.Situation{
		Intents:    []string{"farewell"},
		Emotions:   []string{"fatigue"},
		Depths:     []string{"surface"},
		TimesOfDay: []string{"late_night"},
		Phases:     []string{"stranger"},
	}

	first, _ := s.ExtractAndStore("take care out there", morning, 0.8, models.Variables{})
	second, ok := s.ExtractAndStore("take care out there", night, 0.8, models.Variables{})
	if !ok {
		t.Fatal("second ExtractAndStore rejected")
	}
	if first == second {
		t.Error("identical text in a disjoint situation merged, want separate patterns")
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestParameterizeOrderIsStable(t *testing.T) {
	// Both variables appear; substitution must follow the fixed field
	// order so repeated extractions agree.
	vars := models.Variables{
		UserName:       "sam",
		PastTopic:      "sam's trip",
		TimeExpression: "this evening",
	}
	got := parameterize("sam, about sam's trip this evening...", vars)
	want := "{userName}, about {userName}'s trip {timeExpression}..."
	if got != want {
		t.Errorf("parameterize = %q, want %q", got, want)
	}
}
