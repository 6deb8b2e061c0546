package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindhaven/companion-server-go/internal/middleware"
	"github.com/mindhaven/companion-server-go/internal/model"
)

type mockCheckinRepo struct {
	createFunc     func(ctx context.Context, params model.CreateCheckinParams) (*model.Checkin, error)
	findLatestFunc func(ctx context.Context, userID int64, period model.Period) (*model.Checkin, error)
}

func (m *mockCheckinRepo) Create(ctx context.Context, params model.CreateCheckinParams) (*model.Checkin, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockCheckinRepo) FindLatest(ctx context.Context, userID int64, period model.Period) (*model.Checkin, error) {
	if m.findLatestFunc != nil {
		return m.findLatestFunc(ctx, userID, period)
	}
	return nil, nil
}

func authedRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var req *http.Request
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, target, bytes.NewReader(data))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	user := &model.User{ID: 42, FirstName: "Monica", IsActive: true}
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, user)
	return req.WithContext(ctx)
}

func echoCheckinRepo() *mockCheckinRepo {
	return &mockCheckinRepo{
		createFunc: func(ctx context.Context, params model.CreateCheckinParams) (*model.Checkin, error) {
			return &model.Checkin{
				ID:                 7,
				UserID:             params.UserID,
				Period:             params.Period,
				SleepQuality:       params.SleepQuality,
				EmotionCategory:    params.EmotionCategory,
				MeaningfulMoments:  params.MeaningfulMoments,
				SurroundingsImpact: params.SurroundingsImpact,
				CheckinTime:        time.Now(),
			}, nil
		},
	}
}

func TestCreateMorningCheckin(t *testing.T) {
	h := NewCheckinHandler(echoCheckinRepo())

	req := authedRequest(t, "POST", "/checkin/morning", map[string]string{
		"sleepQuality": "poor",
		"energyLevel":  "low",
	})
	rec := httptest.NewRecorder()

	h.CreateMorning(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp checkinResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.PeriodMorning, resp.Checkin.Period)
	assert.Equal(t, "poor", *resp.Checkin.SleepQuality)
	assert.Equal(t, "42_7_0", resp.SessionID)
}

func TestCreateEveningCheckin(t *testing.T) {
	h := NewCheckinHandler(echoCheckinRepo())

	req := authedRequest(t, "POST", "/checkin/evening", map[string]string{
		"emotionCategory":   "calm",
		"meaningfulMoments": "a walk by the river",
	})
	rec := httptest.NewRecorder()

	h.CreateEvening(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp checkinResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.PeriodEvening, resp.Checkin.Period)
	assert.Equal(t, "calm", *resp.Checkin.EmotionCategory)
	assert.Equal(t, "42_7_1", resp.SessionID)
}

func TestGetLatestCheckin(t *testing.T) {
	t.Run("returns the latest checkin with its session id", func(t *testing.T) {
		quality := "good"
		h := NewCheckinHandler(&mockCheckinRepo{
			findLatestFunc: func(ctx context.Context, userID int64, period model.Period) (*model.Checkin, error) {
				return &model.Checkin{ID: 9, UserID: userID, Period: period, SleepQuality: &quality}, nil
			},
		})

		req := authedRequest(t, "GET", "/checkin/latest?period=morning", nil)
		rec := httptest.NewRecorder()

		h.GetLatest(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp checkinResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "42_9_0", resp.SessionID)
	})

	t.Run("404 when the user has no checkin yet", func(t *testing.T) {
		h := NewCheckinHandler(&mockCheckinRepo{})

		req := authedRequest(t, "GET", "/checkin/latest?period=evening", nil)
		rec := httptest.NewRecorder()

		h.GetLatest(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rejects an unknown period", func(t *testing.T) {
		h := NewCheckinHandler(&mockCheckinRepo{})

		req := authedRequest(t, "GET", "/checkin/latest?period=noon", nil)
		rec := httptest.NewRecorder()

		h.GetLatest(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
