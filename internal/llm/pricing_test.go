package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model     string
		wantInput float64
		wantNil   bool
	}{
		{model: "gpt-4o-mini", wantInput: 0.15},
		{model: "gpt-4o-2024-08-06", wantInput: 2.5},
		{model: "claude-3-5-haiku-20241022", wantInput: 0.8},
		{model: "claude-haiku-4-5", wantInput: 1},
		{model: "google/gemini-2.0-flash-exp:free", wantInput: 0.1},
		{model: "Gemini-2.5-Flash-Lite", wantInput: 0.1},
		{model: "mock", wantNil: true},
		{model: "", wantNil: true},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got := LookupCost(tt.model)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("LookupCost(%q) = %+v, want nil", tt.model, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("LookupCost(%q) = nil", tt.model)
			}
			if got.InputPerMTok != tt.wantInput {
				t.Errorf("input price = %v, want %v", got.InputPerMTok, tt.wantInput)
			}
		})
	}
}

func TestModelCostCost(t *testing.T) {
	c := ModelCost{InputPerMTok: 1, OutputPerMTok: 5}
	if got := c.Cost(2_000_000, 100_000); math.Abs(got-2.5) > 1e-9 {
		t.Errorf("Cost = %v, want 2.5", got)
	}
}
