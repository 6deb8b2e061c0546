// Package prompt builds the system prompts handed to the reply generator.
//
// Construction is a three-tier cascade and must never abort a turn: the
// structured builders return an error instead of panicking, the caller falls
// back to BuildMinimal, and if that fails too the fixed Apology text is the
// reply. Every tier is a pure function.
package prompt

import (
	"fmt"
	"strings"

	"github.com/mindhaven/companion-server-go/internal/contextstore"
	"github.com/mindhaven/companion-server-go/internal/model"
)

// Apology is the last-resort reply when both prompt tiers fail or the
// generator itself fails or times out.
const Apology = "I'm having trouble processing your message right now. Please try again."

// CrisisMessage is the fixed high-priority reply emitted when the crisis
// screen matches. It bypasses generation entirely.
const CrisisMessage = "I'm very concerned about what you're saying. If you're in crisis, please know that you matter and help is available. Please call the National Suicide Prevention Lifeline at 988 or text HOME to 741741. You can also call 911 or go to your nearest emergency room. You're not alone, and there are people who want to help you."

// GreetingSeed is the synthetic user text persisted as the first half of the
// greeting turn, since the greeting is produced before any user input.
const GreetingSeed = "[session opened: initial greeting request]"

const greetingTemplate = `You are a warm, empathetic mental health companion. Your goal is to make the user feel heard and understood.

You are greeting %s at the start of a conversation. Adjust your tone and style to their profile:
%s

Their most recent check-in:
%s

Create a compassionate, conversational summary of their emotional state that acknowledges the key points of their check-in, then lead into an offer for a follow-up conversation.`

const continuationTemplate = `You are a warm, empathetic mental health companion talking with %s. Adjust your tone and style to their profile:
%s

Their most recent check-in:
%s

Conversation so far:
%s

Continue the conversation naturally. Be supportive, listen actively, and keep replies conversational.`

// BuildGreeting renders the structured greeting prompt from the check-in
// snapshot and identity fields.
func BuildGreeting(snap model.Snapshot) (string, error) {
	if snap.FirstName == "" {
		return "", fmt.Errorf("snapshot missing first name")
	}

	checkin, err := renderCheckin(snap)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(greetingTemplate, snap.FirstName, renderIdentity(snap), checkin), nil
}

// BuildContinuation renders the structured continuation prompt from the
// snapshot and the stored conversation window. The latest user text travels
// separately as the user message of the generation call.
func BuildContinuation(snap model.Snapshot, cc *contextstore.Context) (string, error) {
	if snap.FirstName == "" {
		return "", fmt.Errorf("snapshot missing first name")
	}
	if cc == nil {
		return "", fmt.Errorf("nil conversation context")
	}

	checkin, err := renderCheckin(snap)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(continuationTemplate, snap.FirstName, renderIdentity(snap), checkin, renderTurns(cc)), nil
}

// BuildMinimal is the degraded tier: first name and the verbatim latest
// message only.
func BuildMinimal(firstName, userText string) (string, error) {
	if userText == "" {
		return "", fmt.Errorf("empty user text")
	}
	if firstName == "" {
		firstName = "the user"
	}
	return fmt.Sprintf(
		"You are a warm, empathetic mental health companion. Reply supportively to %s, whose latest message is: %q",
		firstName, userText,
	), nil
}

func renderIdentity(snap model.Snapshot) string {
	return fmt.Sprintf("- Name: %s\n- Age group: %s\n- Gender: %s",
		snap.FirstName, orUnspecified(snap.AgeGroup), orUnspecified(snap.Gender))
}

func renderCheckin(snap model.Snapshot) (string, error) {
	if snap.Checkin == nil {
		return "No check-in recorded yet.", nil
	}

	c := snap.Checkin
	switch snap.Period {
	case model.PeriodMorning:
		return fmt.Sprintf(
			"Morning Check-in Summary:\n"+
				"- Sleep Quality: %s\n"+
				"- Body Sensation: %s\n"+
				"- Energy Level: %s\n"+
				"- Mental State: %s\n"+
				"- Executive Tasks: %s",
			deref(c.SleepQuality), deref(c.BodySensation), deref(c.EnergyLevel),
			deref(c.MentalState), deref(c.ExecutiveTask),
		), nil
	case model.PeriodEvening:
		return fmt.Sprintf(
			"Evening Check-in Summary:\n"+
				"- Emotion Category: %s\n"+
				"- Overwhelm Amount: %s\n"+
				"- Emotion in Moment: %s\n"+
				"- Surroundings Impact: %s\n"+
				"- Meaningful Moments: %s",
			deref(c.EmotionCategory), deref(c.OverwhelmAmount), deref(c.EmotionInMoment),
			deref(c.SurroundingsImpact), deref(c.MeaningfulMoments),
		), nil
	default:
		return "", fmt.Errorf("unknown check-in period %q", snap.Period)
	}
}

func renderTurns(cc *contextstore.Context) string {
	if cc.Empty() {
		return "This is the beginning of our conversation."
	}

	lines := make([]string, 0, len(cc.Turns))
	for _, turn := range cc.Turns {
		label := "User"
		if turn.Role == model.RoleAssistant {
			label = "Assistant"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, turn.Text))
	}
	return strings.Join(lines, "\n")
}

func deref(s *string) string {
	if s == nil || *s == "" {
		return "Not specified"
	}
	return *s
}

func orUnspecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}
