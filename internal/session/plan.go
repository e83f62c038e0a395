package session

import (
	"fmt"

	"github.com/abhisek/sunny/internal/store"
)

// Kind is the type of a session activity.
type Kind string

const (
	KindExplain  Kind = "explain"
	KindPractice Kind = "practice"
	KindGame     Kind = "game"
	KindReflect  Kind = "reflect"
)

// Valid reports whether k is a known activity kind.
func (k Kind) Valid() bool {
	switch k {
	case KindExplain, KindPractice, KindGame, KindReflect:
		return true
	}
	return false
}

// Activity is one step of a learning session.
type Activity struct {
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Minutes     int    `json:"minutes"`
}

// Plan is the ordered list of activities for a session.
type Plan struct {
	Greeting   string     `json:"greeting"`
	Activities []Activity `json:"activities"`
}

// Session length bounds, in minutes.
const (
	DefaultMinutes = 15
	MinMinutes     = 5
	MaxMinutes     = 60
)

// MaxActivities caps the number of steps in a plan.
const MaxActivities = 6

// TotalMinutes sums the activity lengths.
func (p *Plan) TotalMinutes() int {
	n := 0
	for _, a := range p.Activities {
		n += a.Minutes
	}
	return n
}

// Validate checks that the plan can be run.
func (p *Plan) Validate() error {
	if len(p.Activities) == 0 {
		return fmt.Errorf("plan has no activities")
	}
	if len(p.Activities) > MaxActivities {
		return fmt.Errorf("plan has %d activities, max %d", len(p.Activities), MaxActivities)
	}
	for i, a := range p.Activities {
		switch {
		case !a.Kind.Valid():
			return fmt.Errorf("activity %d: unknown kind %q", i+1, a.Kind)
		case a.Title == "":
			return fmt.Errorf("activity %d: empty title", i+1)
		case a.Minutes <= 0:
			return fmt.Errorf("activity %d: minutes must be positive", i+1)
		}
	}
	return nil
}

// ToRecord converts the plan for persistence.
func (p *Plan) ToRecord() store.SessionPlan {
	rec := store.SessionPlan{Greeting: p.Greeting, Activities: make([]store.SessionActivity, len(p.Activities))}
	for i, a := range p.Activities {
		rec.Activities[i] = store.SessionActivity{Kind: string(a.Kind), Title: a.Title, Description: a.Description, Minutes: a.Minutes}
	}
	return rec
}

// PlanFromRecord converts a persisted plan.
func PlanFromRecord(rec store.SessionPlan) *Plan {
	p := &Plan{Greeting: rec.Greeting, Activities: make([]Activity, len(rec.Activities))}
	for i, a := range rec.Activities {
		p.Activities[i] = Activity{Kind: Kind(a.Kind), Title: a.Title, Description: a.Description, Minutes: a.Minutes}
	}
	return p
}
