package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/sunny/internal/llm"
)

// PlanInput is the learner context a plan is built from.
type PlanInput struct {
	Topic   string
	Grade   int
	Minutes int
	Mood    string
	// Mastery is the learner's current percentage on Topic.
	Mastery int
}

// Planner builds a session plan.
type Planner interface {
	BuildPlan(ctx context.Context, input PlanInput) (*Plan, error)
}

// PlanSchema is the JSON schema for LLM-generated session plans.
var PlanSchema = &llm.Schema{
	Name:        "session-plan",
	Description: "A short learning session plan for a child",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"greeting": map[string]any{
				"type":        "string",
				"description": "One or two friendly sentences that open the session",
			},
			"activities": map[string]any{
				"type":     "array",
				"minItems": 1,
				"maxItems": MaxActivities,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"kind": map[string]any{
							"type": "string",
							"enum": []any{"explain", "practice", "game", "reflect"},
						},
						"title":       map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
						"minutes":     map[string]any{"type": "integer", "minimum": 1},
					},
					"required":             []any{"kind", "title", "description", "minutes"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"greeting", "activities"},
		"additionalProperties": false,
	},
}

const planSystemPrompt = `You are Sunny, a warm and patient tutor for children aged 6-12.
Plan a short learning session on the given topic.

Rules:
- Start with a short explanation, then practice, a small game, and end with a reflection.
- The minutes of all activities must add up to the session length.
- Match the energy of the session to the child's mood. A tired or frustrated child gets gentler, shorter steps.
- Use simple words a child can read on their own.`

// LLMPlanner builds plans with an LLM provider.
type LLMPlanner struct {
	provider  llm.Provider
	maxTokens int
}

// NewLLMPlanner creates an LLM-backed planner.
func NewLLMPlanner(provider llm.Provider) *LLMPlanner {
	return &LLMPlanner{provider: provider, maxTokens: 1024}
}

func (p *LLMPlanner) BuildPlan(ctx context.Context, input PlanInput) (*Plan, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeSessionPlan)

	resp, err := p.provider.Generate(ctx, llm.Request{
		System:      planSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: planUserMessage(input)}},
		Schema:      PlanSchema,
		MaxTokens:   p.maxTokens,
		Temperature: 0.8,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM plan failed: %w", err)
	}

	var plan Plan
	if err := json.Unmarshal(resp.Content, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	return &plan, nil
}

func planUserMessage(input PlanInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", input.Topic)
	if input.Grade > 0 {
		fmt.Fprintf(&b, "Grade: %d\n", input.Grade)
	}
	fmt.Fprintf(&b, "Session length: %d minutes\n", input.Minutes)
	if input.Mood != "" {
		fmt.Fprintf(&b, "Mood: %s\n", input.Mood)
	}
	fmt.Fprintf(&b, "Current mastery of the topic: %d%%\n", input.Mastery)
	return b.String()
}

// CannedPlanner builds a fixed-shape plan sized to the session length.
// It never fails.
type CannedPlanner struct{}

func (CannedPlanner) BuildPlan(_ context.Context, input PlanInput) (*Plan, error) {
	m := input.Minutes
	explain := max(1, m/5)
	game := max(1, m/5)
	reflect := max(1, m/10)
	practice := max(1, m-explain-game-reflect)

	topic := input.Topic
	return &Plan{
		Greeting: cannedGreeting(input.Mood, topic),
		Activities: []Activity{
			{
				Kind:        KindExplain,
				Title:       fmt.Sprintf("What is %s?", topic),
				Description: fmt.Sprintf("Sunny shows a simple example of %s, step by step.", topic),
				Minutes:     explain,
			},
			{
				Kind:        KindPractice,
				Title:       "Practice time",
				Description: fmt.Sprintf("Try a few %s questions. Take your time and check each answer.", topic),
				Minutes:     practice,
			},
			{
				Kind:        KindGame,
				Title:       "Beat the clock",
				Description: fmt.Sprintf("How many quick %s puzzles can you solve before the timer runs out?", topic),
				Minutes:     game,
			},
			{
				Kind:        KindReflect,
				Title:       "Think back",
				Description: "What was the easiest part today? What was the trickiest?",
				Minutes:     reflect,
			},
		},
	}, nil
}

func cannedGreeting(mood, topic string) string {
	switch strings.ToLower(mood) {
	case "tired":
		return fmt.Sprintf("Let's take it nice and easy today. We'll explore %s one small step at a time.", topic)
	case "frustrated":
		return fmt.Sprintf("Tricky days happen to everyone! Let's look at %s together, no rush.", topic)
	case "excited", "happy":
		return fmt.Sprintf("Love the energy! Ready to power up your %s skills?", topic)
	default:
		return fmt.Sprintf("Hi there! Today we're going on a %s adventure.", topic)
	}
}
