package patterns

import (
	"strings"

	"github.com/luminathea/reflex/internal/constants"
	"github.com/luminathea/reflex/internal/matching"
	"github.com/luminathea/reflex/internal/models"
	"github.com/luminathea/reflex/internal/similarity"
	"github.com/luminathea/reflex/internal/template"
)

// ExtractAndStore turns a well-received generator response into a
// reusable template. The response is parameterized by substituting
// placeholder tokens for the variable values that produced it, then
// either merged into a sufficiently similar existing pattern or stored
// as a new one. Returns the affected pattern ID and whether anything
// was learned.
//
// Nothing is learned when satisfaction is below the learning floor,
// when the template is too long to be a natural reply, or when a
// response longer than the unparameterized limit contains no variables
// at all (those tend to be one-off prose, not reusable phrasing).
func (s *Store) ExtractAndStore(responseText string, situation models.Situation, satisfaction float64, vars models.Variables) (int64, bool) {
	if satisfaction < constants.MinSatisfactionToLearn {
		return 0, false
	}

	tpl := parameterize(responseText, vars)
	if len([]rune(tpl)) > constants.MaxTemplateLen {
		return 0, false
	}
	if tpl == responseText && len([]rune(responseText)) > constants.MaxUnparameterizedLen {
		return 0, false
	}

	if existing := s.findDuplicate(tpl, situation); existing != nil {
		existing.UseCount++
		existing.SuccessCount++
		existing.AvgSatisfaction = (1-constants.SatisfactionSmoothing)*existing.AvgSatisfaction +
			constants.SatisfactionSmoothing*satisfaction
		return existing.ID, true
	}

	p := &models.Pattern{
		ID:              s.nextID,
		Situation:       situation.Clone(),
		Template:        tpl,
		SuccessCount:    1,
		UseCount:        1,
		AvgSatisfaction: satisfaction,
		Origin:          models.OriginLearned,
		EmotionTags:     trimTags(situation.Emotions),
	}
	s.nextID++
	s.insert(p)
	s.enforceCap()
	return p.ID, true
}

// parameterize replaces each non-default variable value in the text
// with its placeholder token. Variables are applied in a fixed order so
// the same response always yields the same template. Values that equal
// their soft fallback are skipped; those substitutions would match far
// too much ordinary text.
func parameterize(text string, vars models.Variables) string {
	for _, name := range models.VarNames {
		value, ok := vars.Lookup(name)
		if !ok || value == "" {
			continue
		}
		if def, soft := template.SoftDefault(name); soft && value == def {
			continue
		}
		text = strings.ReplaceAll(text, value, "{"+name+"}")
	}
	return text
}

// findDuplicate locates an existing pattern close enough in both
// wording and situation that reinforcing it beats storing a near-copy.
// The most textually similar qualifying pattern wins.
func (s *Store) findDuplicate(tpl string, situation models.Situation) *models.Pattern {
	var best *models.Pattern
	bestSim := 0.0
	for _, p := range s.items {
		sim := similarity.Template(tpl, p.Template)
		if sim <= constants.DupTemplateSimilarity {
			continue
		}
		if matching.Overlap(situation, p.Situation) <= constants.DupSituationOverlap {
			continue
		}
		if sim > bestSim {
			bestSim = sim
			best = p
		}
	}
	return best
}
