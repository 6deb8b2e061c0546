package ws

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/mindhaven/companion-server-go/internal/chat"
	"github.com/mindhaven/companion-server-go/internal/config"
	apperrors "github.com/mindhaven/companion-server-go/internal/errors"
	"github.com/mindhaven/companion-server-go/internal/screener"
	"github.com/mindhaven/companion-server-go/internal/util"
)

// Outbound event types.
const (
	EventGreeting = "greeting"
	EventChunk    = "chunk"
	EventReply    = "reply"
	EventCrisis   = "crisis"
)

// Event is one outbound frame. Chunk events carry a reply fragment; the
// terminal greeting/reply/crisis event carries the full text.
type Event struct {
	Type      string                   `json:"type"`
	Content   string                   `json:"content,omitempty"`
	Mood      *screener.MoodAssessment `json:"mood,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
}

// inbound is one client frame. Only type "message" is routed.
type inbound struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Handler upgrades GET /agent/ws/{sessionID} and runs the session loop:
// authenticate, register with the hub, greet if the session is new, then
// route messages until the client disconnects.
type Handler struct {
	auth   *chat.Authenticator
	router *chat.Router
	hub    *Hub
	stream bool
}

func NewHandler(auth *chat.Authenticator, router *chat.Router, hub *Hub, stream bool) *Handler {
	return &Handler{auth: auth, router: router, hub: hub, stream: stream}
}

// RegisterRoutes mounts the websocket endpoint on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/agent/ws/{sessionID}", h.ServeHTTP)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("sessionId", sessionID).Msg("websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "session ended")

	conn.SetReadLimit(config.MaxInboundMessageBytes)

	if !util.IsValidSessionID(sessionID) {
		conn.Close(StatusInvalidSession, "invalid session id")
		return
	}

	ctx := r.Context()

	user, err := h.auth.Authenticate(ctx, r.URL.Query().Get("token"))
	if err != nil {
		code, reason := closeStatusFor(err)
		log.Warn().Err(err).Str("sessionId", sessionID).Msg("websocket authentication failed")
		conn.Close(code, reason)
		return
	}

	h.hub.Register(sessionID, conn)
	defer h.hub.Unregister(sessionID, conn)

	log.Info().
		Str("sessionId", sessionID).
		Int64("userId", user.ID).
		Msg("websocket session connected")

	sess := h.router.Open(ctx, user, sessionID)
	defer h.router.Close(sess)

	sink := h.sinkFor(ctx, conn)

	if sess.State == chat.StateAwaitGreeting {
		reply, err := h.router.Greet(ctx, sess, sink)
		if err != nil {
			log.Error().Err(err).Str("sessionId", sessionID).Msg("greeting failed")
			conn.Close(websocket.StatusInternalError, "greeting failed")
			return
		}
		if err := h.writeEvent(ctx, conn, Event{Type: EventGreeting, Content: reply.Text}); err != nil {
			return
		}
	}

	h.readLoop(ctx, conn, sess, sink)
}

// readLoop routes inbound frames one at a time, in arrival order, until the
// connection drops. Frames the client sends while a reply is being generated
// queue in the socket buffer.
func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, sess *chat.Session, sink chat.Sink) {
	for {
		var msg inbound
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) != -1 || ctx.Err() != nil {
				log.Debug().Str("sessionId", sess.ID.Raw).Msg("websocket closed by client")
			} else {
				log.Warn().Err(err).Str("sessionId", sess.ID.Raw).Msg("websocket read error")
			}
			return
		}

		if msg.Type != "message" || strings.TrimSpace(msg.Content) == "" {
			continue
		}

		reply := h.router.HandleMessage(ctx, sess, msg.Content, sink)
		if reply == nil {
			return
		}

		event := Event{Type: EventReply, Content: reply.Text, Mood: reply.Mood}
		if reply.Crisis {
			event = Event{Type: EventCrisis, Content: reply.Text}
		}
		if err := h.writeEvent(ctx, conn, event); err != nil {
			return
		}
	}
}

// sinkFor returns the chunk sink for streamed replies, or nil when streaming
// is disabled so the router takes the batch path.
func (h *Handler) sinkFor(ctx context.Context, conn *websocket.Conn) chat.Sink {
	if !h.stream {
		return nil
	}
	return func(chunk string) error {
		return h.writeEvent(ctx, conn, Event{Type: EventChunk, Content: chunk})
	}
}

func (h *Handler) writeEvent(ctx context.Context, conn *websocket.Conn, event Event) error {
	event.Timestamp = time.Now().UTC()
	if err := wsjson.Write(ctx, conn, event); err != nil {
		log.Debug().Err(err).Str("type", event.Type).Msg("websocket write failed")
		return err
	}
	return nil
}

func closeStatusFor(err error) (websocket.StatusCode, string) {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeUnauthorized:
		return StatusMissingToken, "missing authentication token"
	case apperrors.ErrCodeInvalidToken, apperrors.ErrCodeTokenExpired:
		return StatusInvalidToken, "invalid or expired token"
	case apperrors.ErrCodeUserInactive:
		return StatusUserInactive, "account is deactivated"
	default:
		return websocket.StatusInternalError, "authentication failed"
	}
}
