// Package adaptive moves a quiz between difficulty tiers based on the
// learner's running answer streaks.
package adaptive

import (
	"fmt"
	"strings"
)

// Difficulty is a quiz difficulty tier. Tiers are ordered easy < medium < hard.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// MinDifficulty and MaxDifficulty bound the tier range.
const (
	MinDifficulty = Easy
	MaxDifficulty = Hard
)

// AllDifficulties returns every tier from lowest to highest.
func AllDifficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
}

// Label returns a kid-friendly name for the tier.
func (d Difficulty) Label() string {
	switch d {
	case Easy:
		return "Warm-up"
	case Medium:
		return "Challenge"
	case Hard:
		return "Super Challenge"
	default:
		return d.String()
	}
}

// Multiplier is the XP multiplier for answering correctly at this tier.
// It doubles as the mastery weight of an answer.
func (d Difficulty) Multiplier() float64 {
	switch d {
	case Medium:
		return 1.5
	case Hard:
		return 2.0
	default:
		return 1.0
	}
}

// Valid reports whether d is within [MinDifficulty, MaxDifficulty].
func (d Difficulty) Valid() bool {
	return d >= MinDifficulty && d <= MaxDifficulty
}

// ParseDifficulty parses a tier name. An empty string yields Easy.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	default:
		return Easy, fmt.Errorf("unknown difficulty %q", s)
	}
}
