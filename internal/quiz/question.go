// Package quiz runs adaptive quizzes: it generates questions, checks
// answers, moves the difficulty between tiers and awards XP.
package quiz

import (
	"github.com/abhisek/sunny/internal/adaptive"
	"github.com/abhisek/sunny/internal/store"
)

// Question is a quiz question ready for display.
type Question struct {
	ID string `json:"id"`

	// Text is the prompt shown to the learner, in plain ASCII,
	// e.g. "What is 345 + 278?" or "Which is larger: 3/4 or 2/3?".
	Text string `json:"text"`

	Format AnswerFormat `json:"format"`

	// Answer is the canonical correct answer. For multiple choice it is
	// the text of the correct option.
	Answer string `json:"-"`

	AnswerType AnswerType `json:"answer_type"`

	// Choices is set only for FormatMultipleChoice.
	Choices []string `json:"choices,omitempty"`

	Hint        string `json:"hint,omitempty"`
	Explanation string `json:"-"`

	Topic      string              `json:"topic"`
	Difficulty adaptive.Difficulty `json:"-"`

	// Demo marks questions served from the built-in bank.
	Demo bool `json:"-"`
}

// AnswerType describes how the correct answer is represented.
type AnswerType string

const (
	AnswerTypeInteger  AnswerType = "integer"  // e.g. "623", "-15"
	AnswerTypeDecimal  AnswerType = "decimal"  // e.g. "3.75", "0.5"
	AnswerTypeFraction AnswerType = "fraction" // e.g. "3/4", "7/2"
	AnswerTypeText     AnswerType = "text"     // multiple choice words, e.g. "triangle"
)

// AnswerFormat describes how the learner provides an answer.
type AnswerFormat string

const (
	FormatNumeric        AnswerFormat = "numeric"
	FormatMultipleChoice AnswerFormat = "multiple_choice"
)

// ToRecord converts the question for persistence.
func (q *Question) ToRecord() store.QuizQuestion {
	return store.QuizQuestion{
		ID:          q.ID,
		Text:        q.Text,
		Format:      string(q.Format),
		Answer:      q.Answer,
		AnswerType:  string(q.AnswerType),
		Choices:     q.Choices,
		Hint:        q.Hint,
		Explanation: q.Explanation,
		Topic:       q.Topic,
		Difficulty:  q.Difficulty.String(),
	}
}

// QuestionFromRecord converts a persisted question.
func QuestionFromRecord(r store.QuizQuestion) *Question {
	d, _ := adaptive.ParseDifficulty(r.Difficulty)
	return &Question{
		ID:          r.ID,
		Text:        r.Text,
		Format:      AnswerFormat(r.Format),
		Answer:      r.Answer,
		AnswerType:  AnswerType(r.AnswerType),
		Choices:     r.Choices,
		Hint:        r.Hint,
		Explanation: r.Explanation,
		Topic:       r.Topic,
		Difficulty:  d,
	}
}

// GenerateInput holds the context needed to generate a question.
type GenerateInput struct {
	Topic      string
	Grade      int
	Difficulty adaptive.Difficulty

	// PriorQuestions holds the text of questions already asked in this
	// quiz, for deduplication.
	PriorQuestions []string

	// RecentErrors describes the learner's recent mistakes, e.g.
	// "answered 623 for 345 + 289, correct was 634".
	RecentErrors []string
}
