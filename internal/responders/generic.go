// README: Free-form stage backed by the completion provider.
package responders

import (
	"context"
	"time"

	"go.uber.org/zap"

	"samanainn/internal/ai"
	"samanainn/internal/chat"
)

const (
	genericFailure    = "Lo siento, he tenido un problema al procesar tu consulta. ¿Puedes intentarlo de nuevo?"
	genericHistory    = 10
	genericTimeout    = 8 * time.Second
	guessedConfidence = 0.7
)

var genericQuestions = []string{"¿Qué puedo hacer en Samaná?", "¿Dónde puedo alojarme en Samaná?", "¿Cuáles son los mejores restaurantes?"}

// CompletionRecorder counts provider calls per conversation. Implementations swallow their own errors.
type CompletionRecorder interface {
	RecordCompletion(ctx context.Context, conversationID string, ok bool)
}

type Generic struct {
	provider ai.CompletionProvider
	recorder CompletionRecorder
	timeout  time.Duration
	logger   *zap.Logger
}

// NewGeneric accepts a nil provider (every turn then apologizes) and a nil recorder.
// A zero timeout means 8s.
func NewGeneric(provider ai.CompletionProvider, recorder CompletionRecorder, timeout time.Duration, logger *zap.Logger) *Generic {
	if timeout <= 0 {
		timeout = genericTimeout
	}
	return &Generic{provider: provider, recorder: recorder, timeout: timeout, logger: named(logger, "generic")}
}

func (g *Generic) Name() chat.ResponderName { return chat.ResponderGeneric }

func (g *Generic) Respond(ctx context.Context, req Request) chat.Response {
	if g.provider == nil {
		g.logger.Warn("no completion provider configured")
		return chat.Apology(genericFailure)
	}

	topic := req.Context.IntentType()
	history := req.History
	if len(history) > genericHistory {
		history = history[len(history)-genericHistory:]
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	res, err := g.provider.Complete(callCtx, ai.CompletionRequest{
		Topic:   topic,
		History: history,
		Snippet: ai.ContextSnippet(req.Context),
		Message: req.Message,
	})
	if g.recorder != nil {
		g.recorder.RecordCompletion(ctx, req.ConversationID, err == nil)
	}
	if err != nil {
		g.logger.Error("completion failed", zap.String("conversationId", req.ConversationID), zap.Error(err))
		return chat.Apology(genericFailure)
	}

	guess := chat.Intent{Type: topic, Confidence: guessedConfidence}
	if res.Intent != nil && res.Intent.Type.Known() {
		guess.Type = res.Intent.Type
		// out of [0,1] (or NaN) keeps the default
		if c := res.Intent.Confidence; c >= 0 && c <= 1 {
			guess.Confidence = c
		}
	}
	questions := res.SuggestedQuestions
	if len(questions) == 0 {
		questions = genericQuestions
	}

	var patch chat.Patch
	if guess.Type != "" {
		patch.Intent = &guess
	}
	if res.UserPreferences != nil && !res.UserPreferences.IsZero() {
		prefs := *res.UserPreferences
		patch.Preferences = &prefs
	}
	return chat.Response{
		Message: res.Message,
		UI: &chat.UI{
			BannerType:         chat.BannerType(guess.Type),
			SuggestedQuestions: questions,
		},
		Context: patch,
	}
}
