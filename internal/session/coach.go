package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/sunny/internal/llm"
)

// StepInput is the context for the tutor message between two activities.
type StepInput struct {
	Topic      string
	Mood       string
	Reflection string
	// Next is the activity about to start, or nil when the session ends.
	Next *Activity
}

// Coach writes the short tutor message shown when a session advances.
type Coach interface {
	Message(ctx context.Context, input StepInput) (string, error)
}

const coachSystemPrompt = `You are Sunny, a warm and patient tutor for children aged 6-12.
Reply in at most three short sentences. React kindly to what the child wrote,
then introduce the next activity, or celebrate if the session is over.`

// maxCoachMessage bounds the tutor message length in bytes.
const maxCoachMessage = 600

// LLMCoach writes step messages with an LLM provider.
type LLMCoach struct {
	provider llm.Provider
}

// NewLLMCoach creates an LLM-backed coach.
func NewLLMCoach(provider llm.Provider) *LLMCoach {
	return &LLMCoach{provider: provider}
}

func (c *LLMCoach) Message(ctx context.Context, input StepInput) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeSessionStep)

	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      coachSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: stepUserMessage(input)}},
		MaxTokens:   200,
		Temperature: 0.8,
	})
	if err != nil {
		return "", fmt.Errorf("LLM step message failed: %w", err)
	}

	msg := strings.TrimSpace(resp.Text())
	if msg == "" {
		return "", fmt.Errorf("LLM step message is empty")
	}
	if len(msg) > maxCoachMessage {
		msg = msg[:maxCoachMessage]
	}
	return msg, nil
}

func stepUserMessage(input StepInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", input.Topic)
	if input.Mood != "" {
		fmt.Fprintf(&b, "Mood: %s\n", input.Mood)
	}
	if input.Reflection != "" {
		fmt.Fprintf(&b, "The child wrote: %q\n", input.Reflection)
	}
	if input.Next == nil {
		b.WriteString("The session is complete.\n")
	} else {
		fmt.Fprintf(&b, "Next activity: %s (%s, %d minutes): %s\n",
			input.Next.Title, input.Next.Kind, input.Next.Minutes, input.Next.Description)
	}
	return b.String()
}

// CannedCoach returns fixed messages. It never fails.
type CannedCoach struct{}

func (CannedCoach) Message(_ context.Context, input StepInput) (string, error) {
	if input.Next == nil {
		return fmt.Sprintf("Amazing work today! You finished your %s session. See you next time!", input.Topic), nil
	}
	lead := "Great job!"
	if input.Reflection != "" {
		lead = "Thanks for sharing!"
	}
	switch input.Next.Kind {
	case KindPractice:
		return fmt.Sprintf("%s Now let's practice: %s", lead, input.Next.Description), nil
	case KindGame:
		return fmt.Sprintf("%s Game time! %s", lead, input.Next.Description), nil
	case KindReflect:
		return fmt.Sprintf("%s Let's take a moment to think. %s", lead, input.Next.Description), nil
	default:
		return fmt.Sprintf("%s Next up: %s", lead, input.Next.Title), nil
	}
}
