// README: Conversation service: lifecycle, history and context persistence.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"samanainn/internal/chat"
)

const (
	DefaultListLimit    = 5
	DefaultHistoryLimit = 50
)

// ContextCache is optional; a nil cache means every read goes to the store.
type ContextCache interface {
	Get(ctx context.Context, id string) (chat.Context, bool, error)
	Set(ctx context.Context, id string, c chat.Context) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	store  Repository
	cache  ContextCache
	locker Locker
	now    func() time.Time
	logger *zap.Logger
}

// NewService defaults to a LocalLocker when locker is nil.
func NewService(store Repository, cache ContextCache, locker Locker, logger *zap.Logger) *Service {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		cache:  cache,
		locker: locker,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.Named("conversation"),
	}
}

func (s *Service) Start(ctx context.Context, sessionID string, userID *string) (*Conversation, error) {
	if strings.TrimSpace(sessionID) == "" {
		sessionID = uuid.NewString()
	}
	now := s.now()
	c := &Conversation{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		UserID:    userID,
		Status:    StatusActive,
		Context:   chat.Context{ProcessingStage: chat.StageInitial},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return c, nil
}

// Resume returns the active conversation id, or a new one when id is empty,
// unknown or already closed. created reports which.
func (s *Service) Resume(ctx context.Context, id, sessionID string) (c *Conversation, created bool, err error) {
	if id != "" {
		c, err = s.store.GetByID(ctx, id)
		switch {
		case err == nil && c.Status == StatusActive:
			c.Context = s.loadContext(ctx, c)
			return c, false, nil
		case err == nil:
			s.logger.Info("conversation closed, starting a new one", zap.String("conversationId", id))
		case errors.Is(err, ErrNotFound):
			s.logger.Warn("conversation not found, starting a new one", zap.String("conversationId", id))
		default:
			return nil, false, err
		}
		if sessionID == "" && c != nil {
			sessionID = c.SessionID
		}
	}
	c, err = s.Start(ctx, sessionID, nil)
	return c, err == nil, err
}

func (s *Service) Get(ctx context.Context, id string) (*Conversation, error) {
	return s.store.GetByID(ctx, id)
}

// History is the last limit messages, oldest first.
func (s *Service) History(ctx context.Context, id string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.store.GetHistory(ctx, id, limit)
}

func (s *Service) Turns(ctx context.Context, id string, limit int) ([]chat.Turn, error) {
	msgs, err := s.store.GetHistory(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	turns := make([]chat.Turn, len(msgs))
	for i, m := range msgs {
		turns[i] = m.Turn()
	}
	return turns, nil
}

func (s *Service) SaveUserMessage(ctx context.Context, id, content string) error {
	return s.save(ctx, id, chat.RoleUser, content, Metadata{})
}

func (s *Service) SaveBotMessage(ctx context.Context, id string, resp chat.Response) error {
	return s.save(ctx, id, chat.RoleBot, resp.Message, Metadata{UI: resp.UI, Results: resp.Results})
}

func (s *Service) save(ctx context.Context, id string, from chat.Role, content string, meta Metadata) error {
	now := s.now()
	meta.Timestamp = now
	return s.store.SaveMessage(ctx, &Message{
		ID:             uuid.NewString(),
		ConversationID: id,
		From:           from,
		Content:        content,
		Metadata:       meta,
		CreatedAt:      now,
	})
}

// SaveContext writes the store first. A failed cache write evicts the key so
// the next read falls through to the store copy.
func (s *Service) SaveContext(ctx context.Context, id string, c chat.Context) error {
	if err := s.store.UpdateContext(ctx, id, c); err != nil {
		return fmt.Errorf("update context: %w", err)
	}
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Set(ctx, id, c); err != nil {
		s.logger.Warn("context cache write failed", zap.String("conversationId", id), zap.Error(err))
		if err := s.cache.Delete(ctx, id); err != nil {
			s.logger.Error("stale context left in cache", zap.String("conversationId", id), zap.Error(err))
		}
	}
	return nil
}

// CurrentContext re-reads the context, cache first. Call it while holding the lock.
func (s *Service) CurrentContext(ctx context.Context, id string) (chat.Context, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return chat.Context{}, err
	}
	return s.loadContext(ctx, c), nil
}

func (s *Service) loadContext(ctx context.Context, c *Conversation) chat.Context {
	if s.cache == nil {
		return c.Context
	}
	cached, ok, err := s.cache.Get(ctx, c.ID)
	if err != nil {
		s.logger.Warn("context cache read failed", zap.String("conversationId", c.ID), zap.Error(err))
		return c.Context
	}
	if !ok {
		return c.Context
	}
	return cached
}

func (s *Service) ListBySession(ctx context.Context, sessionID string, limit int) ([]Conversation, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrBadRequest
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.store.ListBySession(ctx, sessionID, limit)
}

func (s *Service) Close(ctx context.Context, id string) error {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(c.Status, StatusClosed) {
		return ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, id, c.Status, StatusClosed)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidState
	}
	return nil
}

// Lock serializes the turns of one conversation.
func (s *Service) Lock(ctx context.Context, id string) (func(), error) {
	return s.locker.Lock(ctx, id)
}
