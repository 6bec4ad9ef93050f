package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"samanainn/internal/chat"
)

const DefaultModel = "gemini-2.0-flash"

// GeminiProvider implements CompletionProvider using Google's Gemini models.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

// NewGeminiProvider initializes a new Gemini client. An empty apiKey yields
// ErrNotConfigured so callers can run without the generic stage.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, modelName: modelName}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// Complete runs one chat turn. The model is built per request because the
// system instruction depends on topic and context.
func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	model := p.client.GenerativeModel(p.modelName)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.7)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemInstruction(req.Topic, req.Snippet))},
	}

	session := model.StartChat()
	session.History = toContents(req.History)

	resp, err := session.SendMessage(ctx, genai.Text(req.Message))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrNoCandidates
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	return ParseCompletion(text.String())
}

// ParseCompletion decodes the model JSON. A non-JSON body is taken as the plain message.
func ParseCompletion(raw string) (*CompletionResult, error) {
	clean := cleanJSONString(raw)
	if clean == "" {
		return nil, ErrNoCandidates
	}
	var result CompletionResult
	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return &CompletionResult{Message: clean}, nil
	}
	if result.Message == "" {
		return nil, fmt.Errorf("%w: empty message field", ErrNoCandidates)
	}
	return &result, nil
}

func toContents(history []chat.Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		role := "user"
		if t.Role == chat.RoleBot {
			role = "model"
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(t.Content)}})
	}
	return out
}
