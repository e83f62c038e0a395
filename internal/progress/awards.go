package progress

import (
	"math"

	"github.com/abhisek/sunny/internal/adaptive"
)

// Awards is the XP table.
type Awards struct {
	CorrectAnswer   int // scaled by the difficulty multiplier
	QuizComplete    int
	PerfectQuiz     int // on top of QuizComplete
	ChatMessage     int
	SessionComplete int
}

// DefaultAwards returns the standard XP table.
func DefaultAwards() Awards {
	return Awards{
		CorrectAnswer:   10,
		QuizComplete:    25,
		PerfectQuiz:     50,
		ChatMessage:     2,
		SessionComplete: 20,
	}
}

// ForAnswer returns the XP for a correct answer at difficulty d.
func (a Awards) ForAnswer(d adaptive.Difficulty) int {
	return int(math.Round(float64(a.CorrectAnswer) * d.Multiplier()))
}

// ForQuiz returns the completion XP for a quiz. Perfect quizzes with at
// least one answer earn the bonus.
func (a Awards) ForQuiz(correct, total int) int {
	xp := a.QuizComplete
	if total > 0 && correct == total {
		xp += a.PerfectQuiz
	}
	return xp
}
