package simulation

import "github.com/luminathea/reflex/internal/models"

// DailyRoutine returns count turns cycling through a fixed rotation of
// everyday companion situations, all reported at the given quality. The
// rotation stays inside the seed catalog's coverage, which makes it the
// standard workload for exercising the trust ladder.
func DailyRoutine(count int, quality float64) []Turn {
	base := []Turn{
		{
			Label: "morning greeting",
			Situation: models.Situation{
				Intents:    []string{"greeting"},
				Emotions:   []string{"joy"},
				Depths:     []string{"casual"},
				TimesOfDay: []string{"morning"},
			},
			Variables: models.Variables{UserName: "sam", TimeExpression: "this morning"},
			Quality:   quality,
		},
		{
			Label: "night farewell",
			Situation: models.Situation{
				Intents:    []string{"farewell"},
				Emotions:   []string{"warmth"},
				Depths:     []string{"casual"},
				TimesOfDay: []string{"night"},
			},
			Variables: models.Variables{UserName: "sam"},
			Quality:   quality,
		},
		{
			Label: "curious question",
			Situation: models.Situation{
				Intents:  []string{"question"},
				Emotions: []string{"curiosity"},
				Depths:   []string{"casual"},
			},
			Variables: models.Variables{UserName: "sam"},
			Quality:   quality,
		},
		{
			Label: "gratitude",
			Situation: models.Situation{
				Intents:  []string{"gratitude"},
				Emotions: []string{"warmth", "gratitude"},
				Depths:   []string{"personal"},
			},
			Variables: models.Variables{UserName: "sam"},
			Quality:   quality,
		},
		{
			Label: "evening smalltalk",
			Situation: models.Situation{
				Intents:    []string{"smalltalk"},
				Emotions:   []string{"contentment"},
				Depths:     []string{"surface"},
				TimesOfDay: []string{"evening"},
			},
			Variables: models.Variables{Weather: "raining"},
			Quality:   quality,
		},
		{
			Label: "personal sharing",
			Situation: models.Situation{
				Intents:  []string{"sharing"},
				Emotions: []string{"joy"},
				Depths:   []string{"personal"},
			},
			Variables: models.Variables{UserName: "sam"},
			Quality:   quality,
		},
	}
	return RepeatTurns(count, base...)
}
