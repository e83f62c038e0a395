package quiz

import (
	"fmt"
	"strings"

	"github.com/abhisek/sunny/internal/adaptive"
)

const systemPrompt = `You are Sunny, a cheerful tutor writing practice questions for children aged 6-12.

Rules:
- Write one question on the given topic at the given difficulty.
- Use plain ASCII text. No LaTeX or Unicode symbols. Use / for fractions and * for multiplication.
- Keep the wording short, warm and age-appropriate.
- The answer must be correct and in simplest form (reduced fractions, no trailing zeros).
- Use "numeric" for computation and "multiple_choice" for concepts, comparisons or words.
- Multiple choice needs 3 or 4 options with exactly one correct. Distractors should be common mistakes.
- The explanation walks through the solution step by step.
- Do not repeat any question from the "already asked" list.`

var difficultyGuide = map[adaptive.Difficulty]string{
	adaptive.Easy:   "warm-up: single step, small numbers",
	adaptive.Medium: "challenge: one or two steps, grade-level numbers",
	adaptive.Hard:   "super challenge: multi-step or larger numbers, still fair for the grade",
}

// buildUserMessage renders the generation context for the LLM.
func buildUserMessage(input GenerateInput, cfg GeneratorConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", input.Topic)
	if input.Grade > 0 {
		fmt.Fprintf(&b, "Grade: %d\n", input.Grade)
	}
	fmt.Fprintf(&b, "Difficulty: %s (%s)\n", input.Difficulty, difficultyGuide[input.Difficulty])

	b.WriteString("\nAlready asked in this quiz:\n")
	b.WriteString(numberedTail(input.PriorQuestions, cfg.MaxPriorQuestions))

	b.WriteString("\nRecent mistakes by this learner:\n")
	b.WriteString(numberedTail(input.RecentErrors, cfg.MaxRecentErrors))

	return b.String()
}

// numberedTail renders the last max items as a numbered list, or "None".
func numberedTail(items []string, max int) string {
	if len(items) == 0 {
		return "None"
	}
	if max > 0 && len(items) > max {
		items = items[len(items)-max:]
	}

	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return strings.TrimRight(b.String(), "\n")
}
