package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/mindhaven/companion-server-go/internal/errors"
	"github.com/mindhaven/companion-server-go/internal/middleware"
	"github.com/mindhaven/companion-server-go/internal/model"
	"github.com/mindhaven/companion-server-go/internal/repository"
	"github.com/mindhaven/companion-server-go/internal/util"
)

const (
	defaultTranscriptLimit = 50
	maxTranscriptLimit     = 200
)

// ChatHandler serves the durable transcript of past conversations. The
// sliding-window context in Redis expires; this is the record that outlives
// it, scoped to the requesting user.
type ChatHandler struct {
	chats repository.ChatRepository
}

func NewChatHandler(chats repository.ChatRepository) *ChatHandler {
	return &ChatHandler{chats: chats}
}

func (h *ChatHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{sessionID}", h.GetTranscript)

	return r
}

type transcriptResponse struct {
	SessionID string             `json:"sessionId"`
	Messages  []model.ChatRecord `json:"messages"`
}

// GET /chats/{sessionID}?limit=N
func (h *ChatHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	sessionID := chi.URLParam(r, "sessionID")
	if !util.IsValidSessionID(sessionID) {
		writeError(w, apperrors.InvalidInput("sessionId", "malformed session id"))
		return
	}

	limit := defaultTranscriptLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, apperrors.InvalidInput("limit", "must be a positive integer"))
			return
		}
		if n > maxTranscriptLimit {
			n = maxTranscriptLimit
		}
		limit = n
	}

	records, err := h.chats.FindRecentBySession(r.Context(), user.ID, sessionID, limit)
	if err != nil {
		log.Error().Err(err).
			Int64("userId", user.ID).
			Str("sessionId", sessionID).
			Msg("transcript lookup failed")
		writeError(w, apperrors.Database(err))
		return
	}

	// The store returns newest first; the client reads a transcript
	// oldest first.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	writeJSON(w, http.StatusOK, transcriptResponse{
		SessionID: sessionID,
		Messages:  records,
	})
}
