package screener

import (
	"strings"

	"github.com/mindhaven/companion-server-go/internal/model"
)

// Crisis phrases are matched as case-insensitive substrings. Keyword matching
// is not clinically exhaustive; false negatives are an accepted limitation of
// this screen, which exists to short-circuit the obvious cases, not to
// diagnose.
var crisisKeywords = []string{
	"suicide", "kill myself", "want to die", "end it all",
	"harm myself", "self harm", "cut myself", "overdose",
	"no reason to live", "better off dead", "give up",
}

var moodKeywords = map[model.Mood][]string{
	model.MoodPositive: {"happy", "good", "great", "excellent", "wonderful", "amazing"},
	model.MoodNeutral:  {"okay", "fine", "alright", "normal", "stable"},
	model.MoodNegative: {"sad", "depressed", "anxious", "worried", "stressed", "angry", "frustrated"},
}

// moodOrder fixes bucket scan order so PrimaryMood is deterministic.
var moodOrder = []model.Mood{model.MoodPositive, model.MoodNeutral, model.MoodNegative}

// CrisisMatch reports a crisis screen hit and the phrase that triggered it.
type CrisisMatch struct {
	Detected bool   `json:"detected"`
	Keyword  string `json:"keyword,omitempty"`
}

// MoodAssessment is a coarse keyword-derived signal attached to outbound
// events for observability. Confidence is the fraction of buckets that
// matched; it is not a probability.
type MoodAssessment struct {
	PrimaryMood   model.Mood   `json:"primaryMood"`
	DetectedMoods []model.Mood `json:"detectedMoods"`
	Confidence    float64      `json:"confidence"`
}

// ScreenCrisis runs the crisis keyword screen over one inbound message.
func ScreenCrisis(text string) CrisisMatch {
	lower := strings.ToLower(text)
	for _, keyword := range crisisKeywords {
		if strings.Contains(lower, keyword) {
			return CrisisMatch{Detected: true, Keyword: keyword}
		}
	}
	return CrisisMatch{}
}

// AssessMood buckets one inbound message into positive/neutral/negative.
// No bucket hit defaults to neutral.
func AssessMood(text string) MoodAssessment {
	lower := strings.ToLower(text)

	detected := []model.Mood{}
	for _, mood := range moodOrder {
		for _, keyword := range moodKeywords[mood] {
			if strings.Contains(lower, keyword) {
				detected = append(detected, mood)
				break
			}
		}
	}

	if len(detected) == 0 {
		detected = []model.Mood{model.MoodNeutral}
		return MoodAssessment{
			PrimaryMood:   model.MoodNeutral,
			DetectedMoods: detected,
			Confidence:    0,
		}
	}

	return MoodAssessment{
		PrimaryMood:   detected[0],
		DetectedMoods: detected,
		Confidence:    float64(len(detected)) / float64(len(moodKeywords)),
	}
}
