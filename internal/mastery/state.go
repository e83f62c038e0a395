package mastery

// MasteryState represents a topic's position in the mastery lifecycle.
type MasteryState string

const (
	StateNew      MasteryState = "new"
	StateLearning MasteryState = "learning"
	StateMastered MasteryState = "mastered"
	StateRusty    MasteryState = "rusty"
)

// DisplayName returns a kid-friendly label for the state.
func (s MasteryState) DisplayName() string {
	switch s {
	case StateNew:
		return "Not started"
	case StateLearning:
		return "Learning"
	case StateMastered:
		return "Mastered"
	case StateRusty:
		return "Needs review"
	default:
		return string(s)
	}
}

// StateTransition records a mastery state change for display and logging.
type StateTransition struct {
	Topic   string
	From    MasteryState
	To      MasteryState
	Trigger string // "first-attempt", "mastery-reached", "mastery-slipped", "time-decay", "recovery-complete"
}
