package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/mindhaven/companion-server-go/internal/chat"
	apperrors "github.com/mindhaven/companion-server-go/internal/errors"
	"github.com/mindhaven/companion-server-go/internal/middleware"
	"github.com/mindhaven/companion-server-go/internal/model"
	"github.com/mindhaven/companion-server-go/internal/repository"
)

// CheckinHandler records structured self-reports. Each successful check-in
// returns the session id the client uses to open the follow-up conversation.
type CheckinHandler struct {
	checkins repository.CheckinRepository
}

func NewCheckinHandler(checkins repository.CheckinRepository) *CheckinHandler {
	return &CheckinHandler{checkins: checkins}
}

func (h *CheckinHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/morning", h.CreateMorning)
	r.Post("/evening", h.CreateEvening)
	r.Get("/latest", h.GetLatest)

	return r
}

type morningRequest struct {
	SleepQuality  *string `json:"sleepQuality,omitempty"`
	BodySensation *string `json:"bodySensation,omitempty"`
	EnergyLevel   *string `json:"energyLevel,omitempty"`
	MentalState   *string `json:"mentalState,omitempty"`
	ExecutiveTask *string `json:"executiveTask,omitempty"`
}

type eveningRequest struct {
	EmotionCategory    *string `json:"emotionCategory,omitempty"`
	OverwhelmAmount    *string `json:"overwhelmAmount,omitempty"`
	EmotionInMoment    *string `json:"emotionInMoment,omitempty"`
	SurroundingsImpact *string `json:"surroundingsImpact,omitempty"`
	MeaningfulMoments  *string `json:"meaningfulMoments,omitempty"`
}

type checkinResponse struct {
	Checkin   *model.Checkin `json:"checkin"`
	SessionID string         `json:"sessionId"`
}

// POST /checkin/morning
func (h *CheckinHandler) CreateMorning(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req morningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid JSON body"))
		return
	}

	h.create(w, r, model.CreateCheckinParams{
		UserID:        user.ID,
		Period:        model.PeriodMorning,
		SleepQuality:  req.SleepQuality,
		BodySensation: req.BodySensation,
		EnergyLevel:   req.EnergyLevel,
		MentalState:   req.MentalState,
		ExecutiveTask: req.ExecutiveTask,
	})
}

// POST /checkin/evening
func (h *CheckinHandler) CreateEvening(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req eveningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid JSON body"))
		return
	}

	h.create(w, r, model.CreateCheckinParams{
		UserID:             user.ID,
		Period:             model.PeriodEvening,
		EmotionCategory:    req.EmotionCategory,
		OverwhelmAmount:    req.OverwhelmAmount,
		EmotionInMoment:    req.EmotionInMoment,
		SurroundingsImpact: req.SurroundingsImpact,
		MeaningfulMoments:  req.MeaningfulMoments,
	})
}

func (h *CheckinHandler) create(w http.ResponseWriter, r *http.Request, params model.CreateCheckinParams) {
	checkin, err := h.checkins.Create(r.Context(), params)
	if err != nil {
		log.Error().Err(err).
			Int64("userId", params.UserID).
			Str("period", string(params.Period)).
			Msg("checkin insert failed")
		writeError(w, apperrors.Database(err))
		return
	}

	writeJSON(w, http.StatusCreated, checkinResponse{
		Checkin:   checkin,
		SessionID: chat.FormatSessionID(checkin.UserID, checkin.ID, checkin.Period),
	})
}

// GET /checkin/latest?period=morning|evening
func (h *CheckinHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	period := model.Period(r.URL.Query().Get("period"))
	if period != model.PeriodMorning && period != model.PeriodEvening {
		writeError(w, apperrors.InvalidInput("period", "must be morning or evening"))
		return
	}

	checkin, err := h.checkins.FindLatest(r.Context(), user.ID, period)
	if err != nil {
		log.Error().Err(err).Int64("userId", user.ID).Msg("checkin lookup failed")
		writeError(w, apperrors.Database(err))
		return
	}
	if checkin == nil {
		writeError(w, apperrors.NotFound("Check-in"))
		return
	}

	writeJSON(w, http.StatusOK, checkinResponse{
		Checkin:   checkin,
		SessionID: chat.FormatSessionID(checkin.UserID, checkin.ID, checkin.Period),
	})
}
