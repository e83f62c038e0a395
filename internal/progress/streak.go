package progress

import "time"

const dayLayout = "2006-01-02"

// Streak counts consecutive days with recorded activity.
type Streak struct {
	Current    int    `json:"current"`
	Longest    int    `json:"longest"`
	LastActive string `json:"last_active,omitempty"` // YYYY-MM-DD
}

// Touch records activity on day. The same day is a no-op, the next day
// extends the streak and any longer gap restarts it at 1. Returns whether
// the streak changed.
func (s *Streak) Touch(day time.Time) bool {
	today := day.Format(dayLayout)
	if s.LastActive == today {
		return false
	}

	last, err := time.Parse(dayLayout, s.LastActive)
	switch {
	case err != nil:
		s.Current = 1
	case today < s.LastActive:
		// Clock went backwards; keep the recorded streak.
		return false
	case last.AddDate(0, 0, 1).Format(dayLayout) == today:
		s.Current++
	default:
		s.Current = 1
	}

	s.LastActive = today
	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	return true
}

// Effective returns the streak length as of now. A streak whose last
// activity was before yesterday has lapsed and reads as 0.
func (s Streak) Effective(now time.Time) int {
	today := now.Format(dayLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dayLayout)
	if s.LastActive == today || s.LastActive == yesterday {
		return s.Current
	}
	return 0
}
