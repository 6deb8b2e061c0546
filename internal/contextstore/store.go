package contextstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	apperrors "github.com/mindhaven/companion-server-go/internal/errors"
	"github.com/mindhaven/companion-server-go/internal/model"
	redisclient "github.com/mindhaven/companion-server-go/internal/redis"
)

// Turn is one entry of the conversation log: a user message or the
// assistant reply to one.
type Turn struct {
	Role      model.TurnRole `json:"role"`
	Text      string         `json:"text"`
	Timestamp time.Time      `json:"timestamp"`
}

// Context is the ordered turn log for one session. An empty Context is the
// beginning-of-conversation sentinel; callers never see nil.
type Context struct {
	SessionID string
	Turns     []Turn
}

func (c *Context) Empty() bool {
	return len(c.Turns) == 0
}

// Store keeps the sliding-window turn log per session in Redis.
//
// Two bounds are enforced here, not by callers: the window over turn count
// (LTRIM to the newest windowTurns entries on every append) and the sliding
// TTL over time (EXPIRE re-armed on every append). Absence of the key is the
// authoritative signal that a session has no history yet.
type Store struct {
	rdb         redis.Cmdable
	windowTurns int
	ttl         time.Duration
}

func New(client *redisclient.Client, windowTurns int, ttl time.Duration) *Store {
	return &Store{rdb: client.Client, windowTurns: windowTurns, ttl: ttl}
}

// NewFromClient builds a store from a bare go-redis client. Used by tests
// with miniredis.
func NewFromClient(rdb redis.Cmdable, windowTurns int, ttl time.Duration) *Store {
	return &Store{rdb: rdb, windowTurns: windowTurns, ttl: ttl}
}

func (s *Store) Exists(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, redisclient.ContextKey(sessionID)).Result()
	if err != nil {
		return false, apperrors.StoreUnavailable(err)
	}
	return n > 0, nil
}

func (s *Store) Read(ctx context.Context, sessionID string) (*Context, error) {
	raw, err := s.rdb.LRange(ctx, redisclient.ContextKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}

	turns := make([]Turn, 0, len(raw))
	for _, item := range raw {
		var turn Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			// A corrupt entry loses one turn, not the conversation.
			log.Error().Err(err).Str("sessionId", sessionID).Msg("skipping malformed turn in context store")
			continue
		}
		turns = append(turns, turn)
	}

	return &Context{SessionID: sessionID, Turns: turns}, nil
}

// Append stores one completed exchange: the user text and the assistant
// reply, in that order. The window trim and TTL re-arm ride in the same
// pipeline, so a reader never observes a half-written exchange.
func (s *Store) Append(ctx context.Context, sessionID, userText, replyText string) error {
	now := time.Now().UTC()

	userTurn, err := json.Marshal(Turn{Role: model.RoleUser, Text: userText, Timestamp: now})
	if err != nil {
		return fmt.Errorf("marshal user turn: %w", err)
	}
	replyTurn, err := json.Marshal(Turn{Role: model.RoleAssistant, Text: replyText, Timestamp: now})
	if err != nil {
		return fmt.Errorf("marshal assistant turn: %w", err)
	}

	key := redisclient.ContextKey(sessionID)
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, userTurn, replyTurn)
	pipe.LTrim(ctx, key, int64(-s.windowTurns), -1)
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.StoreUnavailable(err)
	}
	return nil
}
