package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider is a chat model backend. When req.Schema is set the returned
// Content is JSON validated against it.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	System string

	// Messages is the conversation history. Chat requests carry the recent
	// turns; quiz and plan generation send a single user message.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// When set, the provider uses its native structured output mechanism.
	// When nil, the response Content is raw text as json.RawMessage.
	Schema *Schema

	MaxTokens int
	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name is sent as the OpenAI schema name, e.g. "quiz-question".
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated output. When a Schema was provided in the
	// request, this is the validated JSON object. When no Schema was
	// provided, this is the raw text response wrapped as a JSON string.
	Content json.RawMessage

	Usage Usage
	// Model is the model that served the request, which may differ from
	// ModelID when the provider resolves an alias.
	Model string
	// StopReason is one of "end", "max_tokens" or "safety".
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Text returns the response content as plain text. Text responses are
// stored as a JSON string; anything else is returned verbatim.
func (r *Response) Text() string {
	var s string
	if err := json.Unmarshal(r.Content, &s); err == nil {
		return s
	}
	return string(r.Content)
}

// wrapText encodes raw model text as a JSON string.
func wrapText(text string) json.RawMessage {
	b, _ := json.Marshal(strings.TrimSpace(text))
	return b
}

// contentFor returns the Response content for raw model output: validated
// JSON when the request carries a schema, a JSON string otherwise.
func contentFor(req Request, raw string) (json.RawMessage, error) {
	if req.Schema == nil {
		return wrapText(raw), nil
	}
	content := json.RawMessage(raw)
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}
	return content, nil
}
