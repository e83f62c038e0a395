package quiz

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/sunny/internal/llm"
)

// Generator produces quiz questions.
type Generator interface {
	// Generate returns a validated question for the input context.
	Generate(ctx context.Context, input GenerateInput) (*Question, error)
}

// GeneratorConfig controls the LLM generator.
type GeneratorConfig struct {
	// Validators run in order on every generated question; the first
	// failure rejects it.
	Validators []Validator

	MaxTokens   int
	Temperature float64

	// MaxPriorQuestions caps the dedup list sent in the prompt.
	MaxPriorQuestions int
	// MaxRecentErrors caps the mistakes sent in the prompt.
	MaxRecentErrors int
}

// DefaultGeneratorConfig returns the standard validator chain and limits.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Validators:        DefaultValidators(),
		MaxTokens:         512,
		Temperature:       0.7,
		MaxPriorQuestions: 8,
		MaxRecentErrors:   5,
	}
}

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   GeneratorConfig
}

// NewLLMGenerator creates an LLM-backed generator.
func NewLLMGenerator(provider llm.Provider, cfg GeneratorConfig) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// questionOutput is the raw LLM response before validation.
type questionOutput struct {
	QuestionText string   `json:"question_text"`
	Format       string   `json:"format"`
	Answer       string   `json:"answer"`
	AnswerType   string   `json:"answer_type"`
	Choices      []string `json:"choices"`
	Hint         string   `json:"hint"`
	Explanation  string   `json:"explanation"`
}

func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) (*Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuizGen)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
		},
		Schema:      QuestionSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw questionOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	q := &Question{
		ID:          uuid.NewString(),
		Text:        raw.QuestionText,
		Format:      AnswerFormat(raw.Format),
		Answer:      raw.Answer,
		AnswerType:  AnswerType(raw.AnswerType),
		Choices:     raw.Choices,
		Hint:        raw.Hint,
		Explanation: raw.Explanation,
		Topic:       input.Topic,
		Difficulty:  input.Difficulty,
	}
	if q.Format == FormatNumeric {
		q.Choices = nil
	}

	if verr := runValidators(g.config.Validators, q, input); verr != nil {
		return nil, verr
	}
	return q, nil
}

// FallbackGenerator serves questions from primary and falls back to a
// secondary generator when primary fails.
type FallbackGenerator struct {
	primary  Generator
	fallback Generator
	logger   *zap.Logger
}

// WithFallback wraps primary so that failures are served by fallback.
// A nil primary always uses fallback.
func WithFallback(primary, fallback Generator, logger *zap.Logger) *FallbackGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackGenerator{primary: primary, fallback: fallback, logger: logger}
}

func (f *FallbackGenerator) Generate(ctx context.Context, input GenerateInput) (*Question, error) {
	if f.primary != nil {
		q, err := f.primary.Generate(ctx, input)
		if err == nil {
			return q, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.Warn("question generation failed, using question bank",
			zap.String("topic", input.Topic),
			zap.String("difficulty", input.Difficulty.String()),
			zap.Error(err))
	}
	return f.fallback.Generate(ctx, input)
}
