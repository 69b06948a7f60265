// Package matching scores stored pattern situations against the current
// situation. Everything here is pure: identical inputs yield identical
// results, with no side effects, which is what makes the matcher testable
// in isolation.
package matching

import (
	"strings"

	"github.com/luminathea/reflex/internal/constants"
	"github.com/luminathea/reflex/internal/models"
)

// Score computes the weighted similarity of a pattern's situation to the
// current situation, in [0,1]. Each dimension contributes its full weight
// on any intersection and half its weight when the pattern leaves the
// dimension unconstrained; the weights sum to 1.0 so no further
// normalization is needed. Emotions fall back to coarse group matching at
// half weight, and keywords earn a fraction of their weight per matched
// pattern keyword.
func Score(pattern, current models.Situation) float64 {
	score := setScore(pattern.Intents, current.Intents, constants.MatchWeightIntents)
	score += emotionScore(pattern.Emotions, current.Emotions)
	score += setScore(pattern.Depths, current.Depths, constants.MatchWeightDepths)
	score += setScore(pattern.TimesOfDay, current.TimesOfDay, constants.MatchWeightTimesOfDay)
	score += setScore(pattern.Phases, current.Phases, constants.MatchWeightPhases)
	score += keywordScore(pattern.Keywords, current.Keywords)
	return score
}

// setScore implements the shared dimension rule: empty pattern side earns
// half the weight, any intersection earns full weight, otherwise nothing.
func setScore(pattern, current []string, weight float64) float64 {
	if len(pattern) == 0 {
		return weight / 2
	}
	if intersects(pattern, current) {
		return weight
	}
	return 0
}

func emotionScore(pattern, current []string) float64 {
	if len(pattern) == 0 {
		return constants.MatchWeightEmotions / 2
	}
	if intersects(pattern, current) {
		return constants.MatchWeightEmotions
	}
	if sharesEmotionGroup(pattern, current) {
		return constants.MatchWeightEmotions / 2
	}
	return 0
}

// sharesEmotionGroup reports whether any emotion on either side maps into
// the same coarse group as one on the other side. Emotions outside the
// known vocabulary have no group and never match this way.
func sharesEmotionGroup(a, b []string) bool {
	for _, ea := range a {
		ga := models.EmotionGroup(ea)
		if ga == "" {
			continue
		}
		for _, eb := range b {
			if models.EmotionGroup(eb) == ga {
				return true
			}
		}
	}
	return false
}

// keywordScore awards the keyword weight proportionally to the fraction of
// the pattern's keywords found as a substring of (or containing) any
// current keyword.
func keywordScore(pattern, current []string) float64 {
	if len(pattern) == 0 {
		return constants.MatchWeightKeywords / 2
	}
	matched := 0
	for _, pk := range pattern {
		for _, ck := range current {
			if strings.Contains(ck, pk) || strings.Contains(pk, ck) {
				matched++
				break
			}
		}
	}
	return constants.MatchWeightKeywords * float64(matched) / float64(len(pattern))
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
