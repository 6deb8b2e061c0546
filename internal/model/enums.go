package model

// Period identifies which daily check-in a conversation is anchored to.
type Period string

const (
	PeriodMorning Period = "morning"
	PeriodEvening Period = "evening"
)

type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

type Mood string

const (
	MoodPositive Mood = "positive"
	MoodNeutral  Mood = "neutral"
	MoodNegative Mood = "negative"
)
