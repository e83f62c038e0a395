package badges

import "testing"

func TestNextStreakThreshold(t *testing.T) {
	tests := []struct {
		current int
		want    int
	}{
		{0, 5},
		{1, 5},
		{4, 5},
		{5, 10},
		{9, 10},
		{10, 15},
		{14, 15},
		{15, 20},
		{19, 20},
		{20, 25},
		{24, 25},
		{25, 30},
	}

	for _, tt := range tests {
		got := NextStreakThreshold(tt.current)
		if got != tt.want {
			t.Errorf("NextStreakThreshold(%d) = %d, want %d", tt.current, got, tt.want)
		}
	}
}

func TestBaseStreakThreshold(t *testing.T) {
	if BaseStreakThreshold != 5 {
		t.Errorf("BaseStreakThreshold = %d, want 5", BaseStreakThreshold)
	}
}

func TestIsStreakMilestone(t *testing.T) {
	tests := []struct {
		length int
		want   bool
	}{
		{0, false},
		{4, false},
		{5, true},
		{6, false},
		{10, true},
		{20, true},
		{25, true},
		{27, false},
	}

	for _, tt := range tests {
		if got := IsStreakMilestone(tt.length); got != tt.want {
			t.Errorf("IsStreakMilestone(%d) = %v, want %v", tt.length, got, tt.want)
		}
	}
}

func TestIsDayMilestone(t *testing.T) {
	for _, d := range []int{3, 7, 14, 30} {
		if !IsDayMilestone(d) {
			t.Errorf("IsDayMilestone(%d) = false, want true", d)
		}
	}
	for _, d := range []int{1, 2, 8, 31} {
		if IsDayMilestone(d) {
			t.Errorf("IsDayMilestone(%d) = true, want false", d)
		}
	}
}
