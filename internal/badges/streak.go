package badges

import "slices"

// BaseStreakThreshold is the first in-quiz streak length that earns a badge.
const BaseStreakThreshold = 5

var streakMilestones = []int{5, 10, 15, 20}

// NextStreakThreshold returns the next streak milestone above the current streak length.
func NextStreakThreshold(current int) int {
	for _, t := range streakMilestones {
		if t > current {
			return t
		}
	}
	// Beyond 20, award every 5.
	return ((current / 5) + 1) * 5
}

// IsStreakMilestone reports whether reaching length earns a streak badge.
func IsStreakMilestone(length int) bool {
	if length < BaseStreakThreshold {
		return false
	}
	return slices.Contains(streakMilestones, length) || length%5 == 0
}

var dayMilestones = []int{3, 7, 14, 30, 60, 100}

// IsDayMilestone reports whether a daily streak of days earns a badge.
func IsDayMilestone(days int) bool {
	return slices.Contains(dayMilestones, days)
}
