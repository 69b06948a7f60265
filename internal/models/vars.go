package models

// Variables is the fixed-shape record of optional substitution values
// supplied fresh per request by the caller. An empty string means the
// variable is absent. Read-only to this core.
type Variables struct {
	UserName            string `json:"user_name,omitempty"`
	TimeExpression      string `json:"time_expression,omitempty"`
	MoodExpression      string `json:"mood_expression,omitempty"`
	CurrentActivity     string `json:"current_activity,omitempty"`
	InterruptedActivity string `json:"interrupted_activity,omitempty"`
	RecentLearning      string `json:"recent_learning,omitempty"`
	ThingToTell         string `json:"thing_to_tell,omitempty"`
	PastTopic           string `json:"past_topic,omitempty"`
	Weather             string `json:"weather,omitempty"`
	Greeting            string `json:"greeting,omitempty"`
	EmotionReason       string `json:"emotion_reason,omitempty"`
}

// Placeholder names as they appear inside templates, in the fixed order
// used for extraction. The order matters: extraction replaces values in
// this order so the produced template is deterministic.
const (
	VarUserName            = "userName"
	VarTimeExpression      = "timeExpression"
	VarMoodExpression      = "moodExpression"
	VarCurrentActivity     = "currentActivity"
	VarInterruptedActivity = "interruptedActivity"
	VarRecentLearning      = "recentLearning"
	VarThingToTell         = "thingToTell"
	VarPastTopic           = "pastTopic"
	VarWeather             = "weather"
	VarGreeting            = "greeting"
	VarEmotionReason       = "emotionReason"
)

// VarNames lists every placeholder name in extraction order.
var VarNames = []string{
	VarUserName,
	VarTimeExpression,
	VarMoodExpression,
	VarCurrentActivity,
	VarInterruptedActivity,
	VarRecentLearning,
	VarThingToTell,
	VarPastTopic,
	VarWeather,
	VarGreeting,
	VarEmotionReason,
}

// Set assigns the value for a placeholder name, reporting whether the
// name is one of the known variables.
func (v *Variables) Set(name, value string) bool {
	switch name {
	case VarUserName:
		v.UserName = value
	case VarTimeExpression:
		v.TimeExpression = value
	case VarMoodExpression:
		v.MoodExpression = value
	case VarCurrentActivity:
		v.CurrentActivity = value
	case VarInterruptedActivity:
		v.InterruptedActivity = value
	case VarRecentLearning:
		v.RecentLearning = value
	case VarThingToTell:
		v.ThingToTell = value
	case VarPastTopic:
		v.PastTopic = value
	case VarWeather:
		v.Weather = value
	case VarGreeting:
		v.Greeting = value
	case VarEmotionReason:
		v.EmotionReason = value
	default:
		return false
	}
	return true
}

// Lookup returns the value for a placeholder name and whether the name is
// one of the known variables at all.
func (v Variables) Lookup(name string) (string, bool) {
	switch name {
	case VarUserName:
		return v.UserName, true
	case VarTimeExpression:
		return v.TimeExpression, true
	case VarMoodExpression:
		return v.MoodExpression, true
	case VarCurrentActivity:
		return v.CurrentActivity, true
	case VarInterruptedActivity:
		return v.InterruptedActivity, true
	case VarRecentLearning:
		return v.RecentLearning, true
	case VarThingToTell:
		return v.ThingToTell, true
	case VarPastTopic:
		return v.PastTopic, true
	case VarWeather:
		return v.Weather, true
	case VarGreeting:
		return v.Greeting, true
	case VarEmotionReason:
		return v.EmotionReason, true
	default:
		return "", false
	}
}
