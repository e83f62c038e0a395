package components

import (
	"testing"

	"charm.land/lipgloss/v2"
)

func TestProgressBarWidth(t *testing.T) {
	tests := []struct {
		name string
		bar  ProgressBar
	}{
		{"empty", ProgressBar{Percent: 0, Width: 20}},
		{"full with label", ProgressBar{Label: "addition", Percent: 1, ShowPercent: true, Width: 40}},
		{"overflow clamps", ProgressBar{Percent: 1.7, Width: 30}},
		{"negative clamps", ProgressBar{Percent: -0.2, ShowPercent: true, Width: 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lipgloss.Width(tt.bar.View()); got > tt.bar.Width+2 {
				t.Errorf("width = %d, want <= %d", got, tt.bar.Width+2)
			}
		})
	}
}
