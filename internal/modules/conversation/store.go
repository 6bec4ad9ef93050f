// README: Conversation store backed by PostgreSQL. The context column is JSONB, last write wins.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"samanainn/internal/chat"
)

// Repository is the persistence contract the service needs. Store and MemoryStore implement it.
type Repository interface {
	Create(ctx context.Context, c *Conversation) error
	GetByID(ctx context.Context, id string) (*Conversation, error)
	GetHistory(ctx context.Context, id string, limit int) ([]Message, error)
	SaveMessage(ctx context.Context, m *Message) error
	UpdateContext(ctx context.Context, id string, c chat.Context) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]Conversation, error)
	UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error)
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, c *Conversation) error {
	raw, err := json.Marshal(c.Context)
	if err != nil {
		return fmt.Errorf("encode context: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO conversations (id, session_id, user_id, status, context, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.SessionID, c.UserID, string(c.Status), raw, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

const conversationColumns = `id, session_id, user_id, status, context, created_at, updated_at`

func (s *Store) GetByID(ctx context.Context, id string) (*Conversation, error) {
	row := s.db.QueryRow(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id)
	c, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetHistory returns the newest limit messages, oldest first.
func (s *Store) GetHistory(ctx context.Context, id string, limit int) ([]Message, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, conversation_id, sender, content, metadata, created_at FROM (
			SELECT id, conversation_id, sender, content, metadata, created_at
			FROM conversation_messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC`, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var from string
		var meta []byte
		if err := rows.Scan(&m.ID, &m.ConversationID, &from, &m.Content, &meta, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.From = chat.Role(from)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &m.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SaveMessage also bumps the conversation's updated_at.
func (s *Store) SaveMessage(ctx context.Context, m *Message) error {
	meta, err := json.Marshal(m.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE conversations SET updated_at = $2 WHERE id = $1`, m.ConversationID, m.CreatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO conversation_messages (id, conversation_id, sender, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.ConversationID, string(m.From), m.Content, meta, m.CreatedAt,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) UpdateContext(ctx context.Context, id string, c chat.Context) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode context: %w", err)
	}
	tag, err := s.db.Exec(ctx, `UPDATE conversations SET context = $2, updated_at = NOW() WHERE id = $1`, id, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBySession returns the most recently updated conversations first.
func (s *Store) ListBySession(ctx context.Context, sessionID string, limit int) ([]Conversation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE session_id = $1
		ORDER BY updated_at DESC
		LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// UpdateStatus is a compare-and-set on the status column.
func (s *Store) UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE conversations SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`, string(to), id, string(from))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanConversation(row pgx.Row) (*Conversation, error) {
	var c Conversation
	var status string
	var raw []byte
	if err := row.Scan(&c.ID, &c.SessionID, &c.UserID, &status, &raw, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Status = Status(status)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &c.Context); err != nil {
			return nil, fmt.Errorf("decode context: %w", err)
		}
	}
	return &c, nil
}
