package model

import (
	"time"
)

// Checkin is one structured self-report. Morning and evening check-ins share
// the table; the field group that does not apply to the period stays null.
type Checkin struct {
	ID     int64  `db:"id" json:"id"`
	UserID int64  `db:"user_id" json:"userId"`
	Period Period `db:"period" json:"period"`

	// Morning fields
	SleepQuality  *string `db:"sleep_quality" json:"sleepQuality,omitempty"`
	BodySensation *string `db:"body_sensation" json:"bodySensation,omitempty"`
	EnergyLevel   *string `db:"energy_level" json:"energyLevel,omitempty"`
	MentalState   *string `db:"mental_state" json:"mentalState,omitempty"`
	ExecutiveTask *string `db:"executive_task" json:"executiveTask,omitempty"`

	// Evening fields
	EmotionCategory    *string `db:"emotion_category" json:"emotionCategory,omitempty"`
	OverwhelmAmount    *string `db:"overwhelm_amount" json:"overwhelmAmount,omitempty"`
	EmotionInMoment    *string `db:"emotion_in_moment" json:"emotionInMoment,omitempty"`
	SurroundingsImpact *string `db:"surroundings_impact" json:"surroundingsImpact,omitempty"`
	MeaningfulMoments  *string `db:"meaningful_moments" json:"meaningfulMoments,omitempty"`

	CheckinTime time.Time `db:"checkin_time" json:"checkinTime"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type CreateCheckinParams struct {
	UserID int64
	Period Period

	SleepQuality  *string
	BodySensation *string
	EnergyLevel   *string
	MentalState   *string
	ExecutiveTask *string

	EmotionCategory    *string
	OverwhelmAmount    *string
	EmotionInMoment    *string
	SurroundingsImpact *string
	MeaningfulMoments  *string
}
