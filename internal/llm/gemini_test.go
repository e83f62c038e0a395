package llm

import "testing"

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-lite", "gemini-2.5-flash-lite"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, geminiModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	schema := buildGeminiSchema(questionSchema().Definition)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 5 {
		t.Fatalf("expected 5 properties, got %d", len(schema.Properties))
	}
	tests := map[string]string{
		"question":   "STRING",
		"points":     "INTEGER",
		"choices":    "ARRAY",
		"difficulty": "STRING",
	}
	for prop, want := range tests {
		if got := string(schema.Properties[prop].Type); got != want {
			t.Errorf("%s type = %s, want %s", prop, got, want)
		}
	}
	if len(schema.Properties["difficulty"].Enum) != 3 {
		t.Errorf("expected 3 enum values, got %d", len(schema.Properties["difficulty"].Enum))
	}
	if schema.Properties["choices"].Items.Type != "STRING" {
		t.Errorf("expected STRING items, got %s", schema.Properties["choices"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Errorf("expected 2 required fields, got %d", len(schema.Required))
	}
}

func TestGeminiConfig(t *testing.T) {
	cfg := geminiConfig(Request{System: "be kind", MaxTokens: 64, Temperature: 0.5, Schema: questionSchema()})

	if cfg.MaxOutputTokens != 64 {
		t.Errorf("MaxOutputTokens = %d, want 64", cfg.MaxOutputTokens)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.5 {
		t.Errorf("Temperature = %v, want 0.5", cfg.Temperature)
	}
	if len(cfg.SafetySettings) != 4 {
		t.Errorf("expected 4 safety settings, got %d", len(cfg.SafetySettings))
	}
	if cfg.SystemInstruction == nil || cfg.SystemInstruction.Parts[0].Text != "be kind" {
		t.Error("expected system instruction")
	}
	if cfg.ResponseMIMEType != "application/json" || cfg.ResponseSchema == nil {
		t.Error("expected JSON response schema")
	}
}

func TestGeminiContentsRoles(t *testing.T) {
	got := geminiContents([]Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(got))
	}
	if got[0].Role != "user" || got[1].Role != "model" {
		t.Errorf("roles = %q, %q", got[0].Role, got[1].Role)
	}
}
