package seed

import (
	"regexp"
	"strings"
	"testing"

	"github.com/luminathea/reflex/internal/models"
	"github.com/luminathea/reflex/internal/patterns"
	"github.com/luminathea/reflex/internal/template"
)

func fullVariables() models.Variables {
	return models.Variables{
		UserName:            "alice",
		TimeExpression:      "this morning",
		MoodExpression:      "honestly,",
		CurrentActivity:     "reading",
		InterruptedActivity: "napping",
		RecentLearning:      "tidal pools",
		ThingToTell:         "i found a new song",
		PastTopic:           "the summer festival",
		Weather:             "rainy",
		Greeting:            "hello hello",
		EmotionReason:       "i missed you",
	}
}

func TestCatalogWellFormed(t *testing.T) {
	entries := Catalog()
	if len(entries) < 20 {
		t.Fatalf("catalog has %d entries, want at least 20", len(entries))
	}

	placeholderRe := regexp.MustCompile(`\{([^{}]*)\}`)
	known := make(map[string]bool)
	for _, name := range models.VarNames {
		known[name] = true
	}
	knownEmotion := make(map[string]bool)
	for _, e := range models.KnownEmotions {
		knownEmotion[e] = true
	}

	seen := make(map[string]bool)
	for i, e := range entries {
		if e.Situation.IsEmpty() {
			t.Errorf("entry %d has an empty situation", i)
		}
		if e.Template == "" {
			t.Errorf("entry %d has an empty template", i)
		}
		if seen[e.Template] {
			t.Errorf("entry %d duplicates template %q", i, e.Template)
		}
		seen[e.Template] = true

		for _, m := range placeholderRe.FindAllStringSubmatch(e.Template, -1) {
			if !known[m[1]] {
				t.Errorf("entry %d references unknown variable %q", i, m[1])
			}
		}

		if len(e.EmotionTags) > models.MaxEmotionTags {
			t.Errorf("entry %d has %d emotion tags, want at most %d", i, len(e.EmotionTags), models.MaxEmotionTags)
		}
		for _, tag := range e.EmotionTags {
			if !knownEmotion[tag] {
				t.Errorf("entry %d has unknown emotion tag %q", i, tag)
			}
		}
	}
}

func TestCatalogCoversAllIntents(t *testing.T) {
	covered := make(map[string]bool)
	for _, e := range Catalog() {
		for _, intent := range e.Situation.Intents {
			covered[intent] = true
		}
	}
	for _, intent := range models.KnownIntents {
		if !covered[intent] {
			t.Errorf("no seed covers intent %q", intent)
		}
	}
}

func TestCatalogExpandsWithFullVariables(t *testing.T) {
	vars := fullVariables()
	for i, e := range Catalog() {
		got, err := template.Expand(e.Template, vars)
		if err != nil {
			t.Errorf("entry %d: Expand(%q) error = %v", i, e.Template, err)
			continue
		}
		if strings.ContainsAny(got, "{}") {
			t.Errorf("entry %d: expanded text %q still contains braces", i, got)
		}
	}
}

func TestInstall(t *testing.T) {
	s := patterns.New()
	n := Install(s)
	if n != len(Catalog()) {
		t.Errorf("Install = %d, want %d", n, len(Catalog()))
	}
	if s.Len() != n {
		t.Errorf("Len = %d, want %d", s.Len(), n)
	}

	for _, p := range s.Patterns() {
		if p.Origin != models.OriginSeed {
			t.Errorf("pattern %d Origin = %q, want %q", p.ID, p.Origin, models.OriginSeed)
		}
		if p.AvgSatisfaction != 0.7 {
			t.Errorf("pattern %d AvgSatisfaction = %v, want 0.7", p.ID, p.AvgSatisfaction)
		}
		if p.UseCount != 0 || p.SuccessCount != 0 {
			t.Errorf("pattern %d counters = %d/%d, want 0/0", p.ID, p.UseCount, p.SuccessCount)
		}
	}

	// A freshly seeded store should already cover most of the
	// vocabulary; that is what makes the first promotion reachable.
	if cov := s.Coverage(); cov < 0.5 {
		t.Errorf("Coverage = %.3f, want at least 0.5", cov)
	}

	// Seeds survive culls unconditionally.
	if removed := s.CullLowQuality(); removed != 0 {
		t.Errorf("CullLowQuality removed %d seeds", removed)
	}
}
