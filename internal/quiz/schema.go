package quiz

import "github.com/abhisek/sunny/internal/llm"

// QuestionSchema is the JSON schema for generated quiz questions.
var QuestionSchema = &llm.Schema{
	Name:        "quiz-question",
	Description: "A single kid-friendly practice question with answer and explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question_text": map[string]any{
				"type":        "string",
				"description": "The question shown to the child, in plain ASCII text",
			},
			"format": map[string]any{
				"type":        "string",
				"enum":        []any{"numeric", "multiple_choice"},
				"description": "How the child answers: type a number or pick a choice",
			},
			"answer": map[string]any{
				"type":        "string",
				"description": "The correct answer. For multiple_choice: the exact text of the correct option.",
			},
			"answer_type": map[string]any{
				"type":        "string",
				"enum":        []any{"integer", "decimal", "fraction", "text"},
				"description": "How the answer is written",
			},
			"choices": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "3 or 4 options for multiple_choice. Empty array for numeric.",
			},
			"hint": map[string]any{
				"type":        "string",
				"description": "A short nudge that does not give the answer away",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "A short step-by-step solution a child can follow",
			},
		},
		"required":             []any{"question_text", "format", "answer", "answer_type", "choices", "hint", "explanation"},
		"additionalProperties": false,
	},
}
