package analytics

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"samanainn/internal/chat"
)

var ErrNotFound = errors.New("analytics not found")

// Store handles chat_analytics persistence.
type Store struct {
	db *pgxpool.Pool
}

// NewStore returns a Store backed by the given connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// UpsertTurn overwrites topic and agents for the conversation, keeping the counters.
func (s *Store) UpsertTurn(ctx context.Context, conversationID string, topic chat.Topic, agents []chat.ResponderName) error {
	raw, err := json.Marshal(agents)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO chat_analytics (conversation_id, topic, agents_used, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (conversation_id) DO UPDATE SET
			topic = EXCLUDED.topic,
			agents_used = EXCLUDED.agents_used,
			updated_at = NOW()
	`, conversationID, string(topic), raw)
	return err
}

// IncrementCompletion bumps the call counter, and the failure counter when ok is false.
func (s *Store) IncrementCompletion(ctx context.Context, conversationID string, ok bool) error {
	failed := 0
	if !ok {
		failed = 1
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO chat_analytics (conversation_id, topic, agents_used, completion_calls, completion_failures, updated_at)
		VALUES ($1, '', '[]'::jsonb, 1, $2, NOW())
		ON CONFLICT (conversation_id) DO UPDATE SET
			completion_calls = chat_analytics.completion_calls + 1,
			completion_failures = chat_analytics.completion_failures + EXCLUDED.completion_failures,
			updated_at = NOW()
	`, conversationID, failed)
	return err
}

func (s *Store) Get(ctx context.Context, conversationID string) (*Summary, error) {
	var out Summary
	var topic string
	var raw []byte
	err := s.db.QueryRow(ctx, `
		SELECT conversation_id, topic, agents_used, completion_calls, completion_failures, updated_at
		FROM chat_analytics WHERE conversation_id = $1
	`, conversationID).Scan(&out.ConversationID, &topic, &raw, &out.CompletionCalls, &out.CompletionFailures, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	out.Topic = chat.Topic(topic)
	if err := json.Unmarshal(raw, &out.AgentsUsed); err != nil {
		return nil, err
	}
	return &out, nil
}
