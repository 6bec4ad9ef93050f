// README: Responder contract shared by the topic specialists, the listing search, booking and the generic path.
package responders

import (
	"context"

	"go.uber.org/zap"

	"samanainn/internal/chat"
)

// Request is everything a responder may read for one turn.
type Request struct {
	ConversationID string
	Message        string
	History        []chat.Turn
	Context        chat.Context
}

// Responder never returns an error: failures come back as chat.Apology values.
type Responder interface {
	Name() chat.ResponderName
	Respond(ctx context.Context, req Request) chat.Response
}

func named(logger *zap.Logger, name string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger.Named(name)
}
