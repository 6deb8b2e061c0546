package chat

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mindhaven/companion-server-go/internal/model"
	"github.com/mindhaven/companion-server-go/internal/repository"
)

// SnapshotFetcher reads the most recent check-in for a user and period.
// "No check-in yet" is an expected, common case (new users): the fetcher
// synthesizes an identity-only snapshot instead of failing, and does the
// same on a store error so the conversation pipeline never blocks on it.
type SnapshotFetcher struct {
	checkins repository.CheckinRepository
}

func NewSnapshotFetcher(checkins repository.CheckinRepository) *SnapshotFetcher {
	return &SnapshotFetcher{checkins: checkins}
}

func (f *SnapshotFetcher) Fetch(ctx context.Context, user *model.User, period model.Period) model.Snapshot {
	snap := model.Snapshot{
		UserID:    user.ID,
		FirstName: user.FirstName,
		Period:    period,
	}
	if user.AgeGroup != nil {
		snap.AgeGroup = *user.AgeGroup
	}
	if user.Gender != nil {
		snap.Gender = *user.Gender
	}

	checkin, err := f.checkins.FindLatest(ctx, user.ID, period)
	if err != nil {
		log.Error().Err(err).
			Int64("userId", user.ID).
			Str("period", string(period)).
			Msg("checkin lookup failed, using identity-only snapshot")
		return snap
	}
	if checkin == nil {
		log.Debug().
			Int64("userId", user.ID).
			Str("period", string(period)).
			Msg("no checkin recorded, using identity-only snapshot")
		return snap
	}

	snap.Checkin = checkin
	return snap
}
