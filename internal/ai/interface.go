package ai

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned by a provider built without credentials.
	ErrNotConfigured = errors.New("completion provider not configured")
	// ErrNoCandidates means the model answered with nothing usable.
	ErrNoCandidates = errors.New("no response candidates")
)

// CompletionProvider is the contract for the free-form conversation stage.
// Implementations are swappable (Gemini today); callers bound the call with ctx.
type CompletionProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}
