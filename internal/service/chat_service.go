package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"samanainn/internal/chat"
	"samanainn/internal/modules/conversation"
)

const historyTurns = 20

// TurnRecorder receives the topic and responders of every finished turn. Implementations swallow their own errors.
type TurnRecorder interface {
	RecordTurn(ctx context.Context, conversationID string, topic chat.Topic, agents []chat.ResponderName)
}

type MessageCommand struct {
	Message        string
	ConversationID string
	SessionID      string
	// Stage lets a client reset the conversation, usually to initial.
	Stage *chat.Stage
}

type MessageResult struct {
	ConversationID string
	Response       chat.Response
	Context        chat.Context
}

// ChatService runs one turn end to end under the conversation lock.
type ChatService struct {
	conversations *conversation.Service
	dispatcher    *TurnDispatcher
	analytics     TurnRecorder
	logger        *zap.Logger
}

func NewChatService(conversations *conversation.Service, dispatcher *TurnDispatcher, analytics TurnRecorder, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		conversations: conversations,
		dispatcher:    dispatcher,
		analytics:     analytics,
		logger:        logger.Named("chat"),
	}
}

func (s *ChatService) HandleMessage(ctx context.Context, cmd MessageCommand) (*MessageResult, error) {
	message := strings.TrimSpace(cmd.Message)
	if message == "" {
		return nil, conversation.ErrBadRequest
	}

	conv, _, err := s.conversations.Resume(ctx, cmd.ConversationID, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	unlock, err := s.conversations.Lock(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// re-read under the lock; an earlier turn may have just written it
	current, err := s.conversations.CurrentContext(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	if cmd.Stage != nil {
		current = current.Merge(chat.Patch{ProcessingStage: cmd.Stage})
	}

	history, err := s.conversations.Turns(ctx, conv.ID, historyTurns)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if err := s.conversations.SaveUserMessage(ctx, conv.ID, message); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	out := s.dispatcher.Dispatch(ctx, Turn{
		ConversationID: conv.ID,
		Message:        message,
		History:        history,
		Context:        current,
	})

	if err := s.conversations.SaveBotMessage(ctx, conv.ID, out.Response); err != nil {
		return nil, fmt.Errorf("save bot message: %w", err)
	}
	if err := s.conversations.SaveContext(ctx, conv.ID, out.Context); err != nil {
		return nil, err
	}
	if s.analytics != nil {
		s.analytics.RecordTurn(ctx, conv.ID, out.Context.IntentType(), out.Context.ActiveAgents)
	}

	s.logger.Debug("turn complete",
		zap.String("conversationId", conv.ID),
		zap.String("stage", string(out.Context.Stage())),
		zap.String("intent", string(out.Context.IntentType())),
		zap.Bool("error", out.Response.Error),
	)
	return &MessageResult{ConversationID: conv.ID, Response: out.Response, Context: out.Context}, nil
}

func (s *ChatService) Conversations() *conversation.Service {
	return s.conversations
}
