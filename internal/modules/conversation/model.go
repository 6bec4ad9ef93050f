// README: Conversation aggregate, stored messages and status definitions.
package conversation

import (
	"errors"
	"time"

	"samanainn/internal/chat"
	"samanainn/internal/modules/catalog"
)

var (
	ErrNotFound     = errors.New("conversation not found")
	ErrInvalidState = errors.New("invalid conversation state transition")
	ErrBadRequest   = errors.New("bad request")
	ErrLocked       = errors.New("conversation is busy")
)

type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

type Conversation struct {
	ID        string       `json:"id"`
	SessionID string       `json:"sessionId"`
	UserID    *string      `json:"userId,omitempty"`
	Status    Status       `json:"status"`
	Context   chat.Context `json:"context"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Metadata is what the client needs to re-render a bot turn.
type Metadata struct {
	UI        *chat.UI         `json:"ui,omitempty"`
	Results   []catalog.Record `json:"results,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	From           chat.Role `json:"from"`
	Content        string    `json:"content"`
	Metadata       Metadata  `json:"metadata"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (m Message) Turn() chat.Turn {
	return chat.Turn{Role: m.From, Content: m.Content}
}

// AllowedTransitions: closed is terminal.
var AllowedTransitions = map[Status][]Status{
	StatusActive: {StatusClosed},
}

func CanTransition(from, to Status) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
