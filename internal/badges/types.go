package badges

// Type identifies the category of achievement.
type Type string

const (
	TypeStreak  Type = "streak"
	TypeQuiz    Type = "quiz"
	TypeLevel   Type = "level"
	TypeMastery Type = "mastery"
	TypeSession Type = "session"
)

// AllTypes returns all badge types in display order.
func AllTypes() []Type {
	return []Type{TypeMastery, TypeStreak, TypeQuiz, TypeLevel, TypeSession}
}

// DisplayName returns a human-readable label for the badge type.
func (t Type) DisplayName() string {
	switch t {
	case TypeStreak:
		return "Hot Streak"
	case TypeQuiz:
		return "Quiz Champ"
	case TypeLevel:
		return "Level Up"
	case TypeMastery:
		return "Topic Master"
	case TypeSession:
		return "Study Star"
	default:
		return string(t)
	}
}

// Icon returns the display icon for the badge type.
func (t Type) Icon() string {
	switch t {
	case TypeStreak:
		return "⚡"
	case TypeQuiz:
		return "🏆"
	case TypeLevel:
		return "🚀"
	case TypeMastery:
		return "💎"
	case TypeSession:
		return "🌟"
	default:
		return "✦"
	}
}
