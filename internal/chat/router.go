package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mindhaven/companion-server-go/internal/contextstore"
	"github.com/mindhaven/companion-server-go/internal/llm"
	"github.com/mindhaven/companion-server-go/internal/model"
	"github.com/mindhaven/companion-server-go/internal/prompt"
	"github.com/mindhaven/companion-server-go/internal/repository"
	"github.com/mindhaven/companion-server-go/internal/screener"
)

// Sink receives reply fragments in order as they are generated. A nil Sink
// selects batch delivery: the caller gets the complete reply only.
type Sink func(chunk string) error

// Reply is the outcome of one routed turn.
type Reply struct {
	Text     string
	Mood     *screener.MoodAssessment
	Crisis   bool
	Greeting bool
}

// Router drives the per-session state machine: greeting vs continuation,
// the crisis short-circuit, prompt construction with its fallback cascade,
// and persistence of each completed turn. One Router serves all sessions;
// it holds no per-session state and is safe for concurrent use.
type Router struct {
	store     *contextstore.Store
	snapshots *SnapshotFetcher
	generator llm.Generator
	chats     repository.ChatRepository
}

func NewRouter(store *contextstore.Store, snapshots *SnapshotFetcher, generator llm.Generator, chats repository.ChatRepository) *Router {
	return &Router{
		store:     store,
		snapshots: snapshots,
		generator: generator,
		chats:     chats,
	}
}

// Open builds the session and decides its initial state: a session with no
// stored context greets first; one with history resumes the conversation.
// If the store cannot answer, the session is treated as new, the same
// behavior as an expired context, and the failure is logged.
func (r *Router) Open(ctx context.Context, user *model.User, rawID string) *Session {
	id := ParseSessionID(rawID)
	if id.Defaulted {
		log.Warn().
			Str("sessionId", rawID).
			Msg("session id carries no recognizable period marker, defaulting to morning")
	}

	state := StateAwaitGreeting
	exists, err := r.store.Exists(ctx, id.Raw)
	if err != nil {
		log.Error().Err(err).
			Str("sessionId", rawID).
			Msg("context store unavailable during open, treating session as new")
	} else if exists {
		state = StateConversing
	}

	return &Session{ID: id, User: user, State: state}
}

// Greet runs the one-time greeting turn. It requires no user input: the
// prompt is built from the check-in snapshot and identity, and the exchange
// is persisted under a synthetic user-text marker.
func (r *Router) Greet(ctx context.Context, sess *Session, sink Sink) (*Reply, error) {
	if sess.State != StateAwaitGreeting {
		return nil, fmt.Errorf("greet called in state %s", sess.State)
	}

	snap := r.snapshotFor(ctx, sess)
	text := r.respond(ctx, sess, prompt.GreetingSeed, sink, func() (string, error) {
		return prompt.BuildGreeting(*snap)
	})
	sess.State = StateGreetingSent

	r.persist(ctx, sess, prompt.GreetingSeed, text)
	sess.State = StateConversing

	return &Reply{Text: text, Greeting: true}, nil
}

// HandleMessage routes one inbound message. The crisis screen runs before
// anything else and takes priority over every failure mode, including an
// unavailable context store. The override is per-message: the session
// returns to CONVERSING for the next turn.
func (r *Router) HandleMessage(ctx context.Context, sess *Session, text string, sink Sink) *Reply {
	if sess.State == StateClosed {
		return nil
	}

	if crisis := screener.ScreenCrisis(text); crisis.Detected {
		sess.State = StateCrisisOverride
		log.Warn().
			Str("sessionId", sess.ID.Raw).
			Int64("userId", sess.User.ID).
			Str("keyword", crisis.Keyword).
			Msg("crisis language detected, overriding normal routing")

		r.persist(ctx, sess, text, prompt.CrisisMessage)
		sess.State = StateConversing

		return &Reply{Text: prompt.CrisisMessage, Crisis: true}
	}

	mood := screener.AssessMood(text)
	snap := r.snapshotFor(ctx, sess)

	cc, err := r.store.Read(ctx, sess.ID.Raw)
	if err != nil {
		// Degrade to a one-shot reply without history rather than
		// failing the turn.
		log.Error().Err(err).
			Str("sessionId", sess.ID.Raw).
			Msg("context store read failed, replying without history")
		cc = &contextstore.Context{SessionID: sess.ID.Raw}
	}

	reply := r.respond(ctx, sess, text, sink, func() (string, error) {
		return prompt.BuildContinuation(*snap, cc)
	})

	r.persist(ctx, sess, text, reply)

	return &Reply{Text: reply, Mood: &mood}
}

// Close marks the session terminal. No further turns are routed.
func (r *Router) Close(sess *Session) {
	sess.State = StateClosed
}

func (r *Router) snapshotFor(ctx context.Context, sess *Session) *model.Snapshot {
	if sess.snapshot == nil {
		snap := r.snapshots.Fetch(ctx, sess.User, sess.ID.Period)
		sess.snapshot = &snap
	}
	return sess.snapshot
}

// respond runs the prompt fallback cascade and the generation call:
// structured prompt, then the minimal prompt, then the fixed apology. A
// generation failure or timeout also lands on the apology. The turn always
// yields some text.
func (r *Router) respond(ctx context.Context, sess *Session, userText string, sink Sink, buildStructured func() (string, error)) string {
	system, err := buildStructured()
	if err != nil {
		log.Warn().Err(err).
			Str("sessionId", sess.ID.Raw).
			Msg("structured prompt failed, falling back to minimal prompt")

		system, err = prompt.BuildMinimal(sess.User.FirstName, userText)
		if err != nil {
			log.Error().Err(err).
				Str("sessionId", sess.ID.Raw).
				Msg("minimal prompt failed, using fixed apology")
			return prompt.Apology
		}
	}

	var reply string
	if sink != nil {
		reply, err = r.generator.GenerateStream(ctx, system, userText, sink)
	} else {
		reply, err = r.generator.Generate(ctx, system, userText)
	}
	if err != nil {
		log.Error().Err(err).
			Str("sessionId", sess.ID.Raw).
			Msg("reply generation failed, using fixed apology")
		return prompt.Apology
	}

	return reply
}

// persist records the completed exchange in the sliding-window context
// store (re-arming its TTL) and in the durable transcript. Neither failure
// fails the turn; both are logged.
func (r *Router) persist(ctx context.Context, sess *Session, userText, replyText string) {
	if err := r.store.Append(ctx, sess.ID.Raw, userText, replyText); err != nil {
		log.Error().Err(err).
			Str("sessionId", sess.ID.Raw).
			Msg("context store append failed, conversation window loses this turn")
	}

	if _, err := r.chats.Create(ctx, model.CreateChatParams{
		UserID:    sess.User.ID,
		SessionID: sess.ID.Raw,
		UserText:  userText,
		ReplyText: replyText,
	}); err != nil {
		log.Error().Err(err).
			Str("sessionId", sess.ID.Raw).
			Msg("transcript write failed")
	}
}
