package analytics

import (
	"time"

	"samanainn/internal/chat"
)

// Summary is one row of chat_analytics.
type Summary struct {
	ConversationID     string               `json:"conversationId"`
	Topic              chat.Topic           `json:"topic"`
	AgentsUsed         []chat.ResponderName `json:"agentsUsed"`
	CompletionCalls    int                  `json:"completionCalls"`
	CompletionFailures int                  `json:"completionFailures"`
	UpdatedAt          time.Time            `json:"updatedAt"`
}
