// Package llm is the gateway to the external text-generation service. The
// rest of the system treats it as a black box that is slow and occasionally
// failing; every call carries a bounded timeout and a timeout is reported
// the same way as any other generation failure.
package llm

import (
	"context"
)

// Generator produces one reply per call. GenerateStream yields the same text
// incrementally: onChunk is invoked for each fragment in order, and the next
// fragment is not requested until onChunk returns (pull-based, so a slow
// consumer slows generation instead of buffering it).
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userText string) (string, error)
	GenerateStream(ctx context.Context, systemPrompt, userText string, onChunk func(string) error) (string, error)
}
