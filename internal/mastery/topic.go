package mastery

import (
	"math"
	"time"

	"github.com/abhisek/sunny/internal/store"
)

// Thresholds configures when a topic counts as mastered.
type Thresholds struct {
	MasteredPercent int           // weighted mastery needed to reach mastered
	SlipPercent     int           // mastered topics below this fall back to learning
	MinAttempts     int           // attempts required before mastery can be reached
	RustyAfter      time.Duration // idle time after which mastered topics go rusty
}

// DefaultThresholds returns the standard mastery thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MasteredPercent: 80,
		SlipPercent:     60,
		MinAttempts:     10,
		RustyAfter:      21 * 24 * time.Hour,
	}
}

// TopicMastery holds the proficiency data for a single topic.
type TopicMastery struct {
	Topic         string
	State         MasteryState
	Attempted     int
	Correct       int
	WeightedScore float64
	WeightedTotal float64
	LastPracticed time.Time
}

// Accuracy returns the raw accuracy ratio.
func (tm *TopicMastery) Accuracy() float64 {
	if tm.Attempted == 0 {
		return 0.0
	}
	return float64(tm.Correct) / float64(tm.Attempted)
}

// Percent returns mastery as a 0-100 percentage. Answers are weighted by
// difficulty so that correct answers on harder tiers count for more.
func (tm *TopicMastery) Percent() int {
	if tm.WeightedTotal <= 0 {
		return 0
	}
	return int(math.Round(100 * tm.WeightedScore / tm.WeightedTotal))
}

// Record applies one answer with the given difficulty weight (>= 1).
// Returns a StateTransition if the answer changed the state, nil otherwise.
func (tm *TopicMastery) Record(correct bool, weight float64, now time.Time, th Thresholds) *StateTransition {
	if weight <= 0 {
		weight = 1
	}

	var transition *StateTransition
	if tm.State == "" || tm.State == StateNew {
		transition = tm.transition(StateLearning, "first-attempt")
	}

	tm.Attempted++
	tm.WeightedTotal += weight
	if correct {
		tm.Correct++
		tm.WeightedScore += weight
	}
	tm.LastPracticed = now

	pct := tm.Percent()
	switch tm.State {
	case StateLearning:
		if tm.Attempted >= th.MinAttempts && pct >= th.MasteredPercent {
			transition = tm.transition(StateMastered, "mastery-reached")
		}
	case StateMastered:
		if pct < th.SlipPercent {
			transition = tm.transition(StateLearning, "mastery-slipped")
		}
	case StateRusty:
		// A correct answer while rusty brings the topic back when the
		// running mastery still clears the bar.
		switch {
		case correct && pct >= th.MasteredPercent:
			transition = tm.transition(StateMastered, "recovery-complete")
		case pct < th.SlipPercent:
			transition = tm.transition(StateLearning, "mastery-slipped")
		}
	}
	return transition
}

// Decay marks a mastered topic rusty when it has not been practiced
// within th.RustyAfter. Returns nil if nothing changed.
func (tm *TopicMastery) Decay(now time.Time, th Thresholds) *StateTransition {
	if tm.State != StateMastered || th.RustyAfter <= 0 || tm.LastPracticed.IsZero() {
		return nil
	}
	if now.Sub(tm.LastPracticed) < th.RustyAfter {
		return nil
	}
	return tm.transition(StateRusty, "time-decay")
}

func (tm *TopicMastery) transition(to MasteryState, trigger string) *StateTransition {
	from := tm.State
	if from == "" {
		from = StateNew
	}
	tm.State = to
	return &StateTransition{Topic: tm.Topic, From: from, To: to, Trigger: trigger}
}

// FromRecord loads a topic's mastery from its persisted form.
func FromRecord(topic string, rec store.TopicProgress) *TopicMastery {
	state := MasteryState(rec.State)
	if state == "" {
		state = StateNew
	}
	return &TopicMastery{
		Topic:         topic,
		State:         state,
		Attempted:     rec.Attempted,
		Correct:       rec.Correct,
		WeightedScore: rec.WeightedScore,
		WeightedTotal: rec.WeightedTotal,
		LastPracticed: rec.LastPracticed,
	}
}

// ToRecord returns the persisted form of the topic's mastery.
func (tm *TopicMastery) ToRecord() store.TopicProgress {
	return store.TopicProgress{
		Attempted:     tm.Attempted,
		Correct:       tm.Correct,
		WeightedScore: tm.WeightedScore,
		WeightedTotal: tm.WeightedTotal,
		Mastery:       tm.Percent(),
		State:         string(tm.State),
		LastPracticed: tm.LastPracticed,
	}
}
