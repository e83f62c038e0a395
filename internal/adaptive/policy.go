package adaptive

import (
	"fmt"
	"time"
)

// Policy holds the streak thresholds that trigger a tier change.
type Policy struct {
	RaiseAfter int // consecutive correct answers that move the quiz up a tier
	LowerAfter int // consecutive wrong answers that move the quiz down a tier
}

// DefaultPolicy returns the standard thresholds.
func DefaultPolicy() Policy {
	return Policy{RaiseAfter: 3, LowerAfter: 2}
}

// Tracker is the per-quiz streak state the policy reads and updates.
type Tracker struct {
	CorrectStreak   int
	IncorrectStreak int
}

// Adjustment is a logged tier change.
type Adjustment struct {
	From       Difficulty
	To         Difficulty
	Reason     string
	AtQuestion int
	At         time.Time
}

// Apply folds one answer into the tracker and returns the new tier.
//
// A correct answer extends the correct streak and clears the incorrect
// one; a wrong answer does the reverse. When a streak reaches its
// threshold the tier moves exactly one step and both streaks reset. At a
// bound the tier is clamped: the streak still resets but no Adjustment is
// returned.
func (p Policy) Apply(current Difficulty, tr Tracker, correct bool) (Difficulty, Tracker, *Adjustment) {
	if correct {
		tr.CorrectStreak++
		tr.IncorrectStreak = 0
	} else {
		tr.IncorrectStreak++
		tr.CorrectStreak = 0
	}

	var next Difficulty
	var reason string
	switch {
	case p.RaiseAfter > 0 && tr.CorrectStreak >= p.RaiseAfter:
		next = clamp(current + 1)
		reason = fmt.Sprintf("%d correct in a row", tr.CorrectStreak)
	case p.LowerAfter > 0 && tr.IncorrectStreak >= p.LowerAfter:
		next = clamp(current - 1)
		reason = fmt.Sprintf("%d incorrect in a row", tr.IncorrectStreak)
	default:
		return current, tr, nil
	}

	tr = Tracker{}
	if next == current {
		return current, tr, nil
	}
	return next, tr, &Adjustment{From: current, To: next, Reason: reason}
}

func clamp(d Difficulty) Difficulty {
	if d < MinDifficulty {
		return MinDifficulty
	}
	if d > MaxDifficulty {
		return MaxDifficulty
	}
	return d
}
