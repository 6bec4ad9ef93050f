// README: Best-effort chat analytics. Nothing here ever fails a turn.
package analytics

import (
	"context"

	"go.uber.org/zap"

	"samanainn/internal/chat"
)

// Recorder is the persistence the service writes through. *Store implements it.
type Recorder interface {
	UpsertTurn(ctx context.Context, conversationID string, topic chat.Topic, agents []chat.ResponderName) error
	IncrementCompletion(ctx context.Context, conversationID string, ok bool) error
}

type Service struct {
	store  Recorder
	logger *zap.Logger
}

// NewService accepts a nil store; every call is then a no-op.
func NewService(store Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger.Named("analytics")}
}

func (s *Service) RecordTurn(ctx context.Context, conversationID string, topic chat.Topic, agents []chat.ResponderName) {
	if s.store == nil || conversationID == "" {
		return
	}
	if err := s.store.UpsertTurn(ctx, conversationID, topic, agents); err != nil {
		s.logger.Warn("record turn failed", zap.String("conversationId", conversationID), zap.Error(err))
	}
}

func (s *Service) RecordCompletion(ctx context.Context, conversationID string, ok bool) {
	if s.store == nil || conversationID == "" {
		return
	}
	if err := s.store.IncrementCompletion(ctx, conversationID, ok); err != nil {
		s.logger.Warn("record completion failed", zap.String("conversationId", conversationID), zap.Error(err))
	}
}
