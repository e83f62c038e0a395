package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func questionSchema() *Schema {
	return &Schema{
		Name:        "test-quiz-question",
		Description: "A quiz question",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question":   map[string]any{"type": "string"},
				"answer":     map[string]any{"type": "string"},
				"difficulty": map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
				"points":     map[string]any{"type": "integer", "minimum": 0},
				"choices": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required": []any{"question", "answer"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"question":"What is 3+4?","answer":"7","difficulty":"easy","points":10}`, false},
		{"optional fields omitted", `{"question":"What is 3+4?","answer":"7"}`, false},
		{"choices array", `{"question":"Pick one","answer":"1","choices":["3","7"]}`, false},
		{"missing required", `{"question":"What is 3+4?"}`, true},
		{"wrong type", `{"question":"Q","answer":"A","points":"ten"}`, true},
		{"bad enum", `{"question":"Q","answer":"A","difficulty":"extreme"}`, true},
		{"bad array item", `{"question":"Q","answer":"A","choices":[1,2]}`, true},
		{"malformed", `{not json}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(questionSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var invErr *ErrInvalidResponse
				if !errors.As(err, &invErr) {
					t.Fatalf("expected ErrInvalidResponse, got: %T", err)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`"just text"`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestContentFor(t *testing.T) {
	content, err := contentFor(Request{}, "  Great job, superstar!  \n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp := &Response{Content: content}
	if got := resp.Text(); got != "Great job, superstar!" {
		t.Fatalf("Text() = %q", got)
	}

	if _, err := contentFor(Request{Schema: questionSchema()}, "not json"); err == nil {
		t.Fatal("expected schema validation error")
	}
}

func TestResponseText_RawJSON(t *testing.T) {
	resp := &Response{Content: json.RawMessage(`{"a":1}`)}
	if got := resp.Text(); got != `{"a":1}` {
		t.Fatalf("Text() = %q", got)
	}
}
