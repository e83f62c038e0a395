package progress

import "testing"

func TestRecommend(t *testing.T) {
	tests := []struct {
		name   string
		topics []TopicProgress
		want   string
	}{
		{"nothing practiced", nil, "addition"},
		{"untouched topics ignored", []TopicProgress{{Topic: "shapes", Attempted: 0}}, "addition"},
		{"lowest mastery", []TopicProgress{
			{Topic: "division", Attempted: 5, Mastery: 70, State: "learning"},
			{Topic: "fractions", Attempted: 3, Mastery: 40, State: "learning"},
		}, "fractions"},
		{"tie broken by name", []TopicProgress{
			{Topic: "subtraction", Attempted: 2, Mastery: 50, State: "learning"},
			{Topic: "multiplication", Attempted: 2, Mastery: 50, State: "learning"},
		}, "multiplication"},
		{"rusty first", []TopicProgress{
			{Topic: "fractions", Attempted: 3, Mastery: 40, State: "learning"},
			{Topic: "time", Attempted: 12, Mastery: 90, State: "rusty"},
		}, "time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Recommend(tt.topics, "addition"); got != tt.want {
				t.Errorf("Recommend() = %q, want %q", got, tt.want)
			}
		})
	}
}
