package chat

import (
	"fmt"
	"strings"

	"github.com/mindhaven/companion-server-go/internal/model"
)

// State names one position in the session lifecycle.
type State string

const (
	StateAwaitGreeting  State = "AWAIT_GREETING"
	StateGreetingSent   State = "GREETING_SENT"
	StateConversing     State = "CONVERSING"
	StateCrisisOverride State = "CRISIS_OVERRIDE"
	StateClosed         State = "CLOSED"
)

// SessionID is the parsed form of a chat id. The raw id is shaped
// {userID}_{checkinID}_{periodMarker}, where marker 0 is morning and 1 is
// evening. Ids that validate structurally but carry an unknown marker default
// to morning; Defaulted records that the default was applied so callers can
// log it rather than hide it.
type SessionID struct {
	Raw       string
	Period    model.Period
	Defaulted bool
}

const periodSegmentIndex = 2

// ParseSessionID interprets the period segment of an already
// structurally-validated session id.
func ParseSessionID(raw string) SessionID {
	parts := strings.Split(raw, "_")
	if len(parts) > periodSegmentIndex {
		switch parts[periodSegmentIndex] {
		case "0":
			return SessionID{Raw: raw, Period: model.PeriodMorning}
		case "1":
			return SessionID{Raw: raw, Period: model.PeriodEvening}
		}
	}
	return SessionID{Raw: raw, Period: model.PeriodMorning, Defaulted: true}
}

// FormatSessionID builds the id a client uses to open the conversation that
// follows a check-in.
func FormatSessionID(userID, checkinID int64, period model.Period) string {
	marker := "0"
	if period == model.PeriodEvening {
		marker = "1"
	}
	return fmt.Sprintf("%d_%d_%s", userID, checkinID, marker)
}

// Session is one logical conversation bound to one authenticated user. The
// transport handle stays in the ws package; the session itself carries only
// routing state.
type Session struct {
	ID    SessionID
	User  *model.User
	State State

	// snapshot is fetched once per session, at greeting time or on the
	// first continuation turn.
	snapshot *model.Snapshot
}
