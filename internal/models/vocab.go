package models

// Canonical vocabularies produced by the external analyzers. Coverage is
// measured against these lists, and the seed catalog draws from them.
// Free-text keywords have no vocabulary.
var (
	KnownIntents = []string{
		"greeting", "farewell", "question", "request", "gratitude",
		"apology", "encouragement", "smalltalk", "sharing", "complaint",
		"reflection", "play",
	}

	KnownEmotions = []string{
		"joy", "happiness", "warmth", "affection", "gratitude",
		"peace", "calm", "contentment", "relief",
		"excitement", "curiosity", "surprise", "anticipation", "playfulness",
		"sadness", "loneliness", "melancholy", "longing", "disappointment",
		"anger", "frustration", "anxiety", "fear", "disgust",
		"neutral", "boredom", "fatigue",
	}

	KnownDepths = []string{"surface", "casual", "personal", "deep"}

	KnownTimesOfDay = []string{
		"dawn", "morning", "midday", "afternoon", "evening", "night",
		"late_night",
	}

	KnownPhases = []string{
		"stranger", "acquaintance", "friend", "close_friend", "companion",
	}
)

// Coarse emotion groups used by the matcher's fallback when two emotion
// sets have no direct intersection.
const (
	EmotionGroupPositive = "positive"
	EmotionGroupCalm     = "calm"
	EmotionGroupExcited  = "excited"
	EmotionGroupSad      = "sad"
	EmotionGroupNegative = "negative"
	EmotionGroupNeutral  = "neutral"
)

var emotionGroups = map[string]string{
	"joy":       EmotionGroupPositive,
	"happiness": EmotionGroupPositive,
	"warmth":    EmotionGroupPositive,
	"affection": EmotionGroupPositive,
	"gratitude": EmotionGroupPositive,

	"peace":       EmotionGroupCalm,
	"calm":        EmotionGroupCalm,
	"contentment": EmotionGroupCalm,
	"relief":      EmotionGroupCalm,

	"excitement":   EmotionGroupExcited,
	"curiosity":    EmotionGroupExcited,
	"surprise":     EmotionGroupExcited,
	"anticipation": EmotionGroupExcited,
	"playfulness":  EmotionGroupExcited,

	"sadness":        EmotionGroupSad,
	"loneliness":     EmotionGroupSad,
	"melancholy":     EmotionGroupSad,
	"longing":        EmotionGroupSad,
	"disappointment": EmotionGroupSad,

	"anger":       EmotionGroupNegative,
	"frustration": EmotionGroupNegative,
	"anxiety":     EmotionGroupNegative,
	"fear":        EmotionGroupNegative,
	"disgust":     EmotionGroupNegative,

	"neutral": EmotionGroupNeutral,
	"boredom": EmotionGroupNeutral,
	"fatigue": EmotionGroupNeutral,
}

// EmotionGroup returns the coarse group for an emotion, or "" when the
// emotion is outside the known vocabulary.
func EmotionGroup(emotion string) string {
	return emotionGroups[emotion]
}
