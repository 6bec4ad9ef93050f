package ai

import "samanainn/internal/chat"

// CompletionRequest is one free-form turn for the model.
type CompletionRequest struct {
	// Topic selects the system instruction; unknown topics use the default persona.
	Topic chat.Topic

	// History is oldest first and already trimmed by the caller.
	History []chat.Turn

	// Snippet is the context summary appended to the system instruction.
	Snippet string

	Message string
}

// CompletionResult captures the structured output from the model.
// Every field except Message is optional.
type CompletionResult struct {
	Message string `json:"message"`

	Intent *IntentGuess `json:"intent,omitempty"`

	SuggestedQuestions []string `json:"suggestedQuestions,omitempty"`

	UserPreferences *chat.Preferences `json:"userPreferences,omitempty"`
}

type IntentGuess struct {
	Type       chat.Topic `json:"type"`
	Confidence float64    `json:"confidence"`
}
