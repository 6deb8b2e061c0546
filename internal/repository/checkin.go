package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mindhaven/companion-server-go/internal/database"
	"github.com/mindhaven/companion-server-go/internal/model"
)

type CheckinRepository interface {
	Create(ctx context.Context, params model.CreateCheckinParams) (*model.Checkin, error)
	FindLatest(ctx context.Context, userID int64, period model.Period) (*model.Checkin, error)
}

type checkinRepo struct {
	db database.DBTX
}

func NewCheckinRepository(db database.DBTX) CheckinRepository {
	return &checkinRepo{db: db}
}

func (r *checkinRepo) Create(ctx context.Context, params model.CreateCheckinParams) (*model.Checkin, error) {
	var checkin model.Checkin
	err := r.db.GetContext(ctx, &checkin, `
		INSERT INTO checkins (
			user_id, period,
			sleep_quality, body_sensation, energy_level, mental_state, executive_task,
			emotion_category, overwhelm_amount, emotion_in_moment, surroundings_impact, meaningful_moments,
			checkin_time
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING *
	`,
		params.UserID, params.Period,
		params.SleepQuality, params.BodySensation, params.EnergyLevel, params.MentalState, params.ExecutiveTask,
		params.EmotionCategory, params.OverwhelmAmount, params.EmotionInMoment, params.SurroundingsImpact, params.MeaningfulMoments,
	)
	if err != nil {
		return nil, err
	}
	return &checkin, nil
}

func (r *checkinRepo) FindLatest(ctx context.Context, userID int64, period model.Period) (*model.Checkin, error) {
	var checkin model.Checkin
	err := r.db.GetContext(ctx, &checkin, `
		SELECT * FROM checkins
		WHERE user_id = $1 AND period = $2
		ORDER BY checkin_time DESC
		LIMIT 1
	`, userID, period)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &checkin, nil
}
