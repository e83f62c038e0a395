package adaptive

import "testing"

func TestApply_RaisesAfterCorrectStreak(t *testing.T) {
	p := DefaultPolicy()
	d, tr := Easy, Tracker{}

	var adj *Adjustment
	for i := 0; i < p.RaiseAfter; i++ {
		d, tr, adj = p.Apply(d, tr, true)
		if i < p.RaiseAfter-1 && adj != nil {
			t.Fatalf("adjusted early at answer %d", i+1)
		}
	}
	if d != Medium {
		t.Fatalf("difficulty = %s, want medium", d)
	}
	if adj == nil || adj.From != Easy || adj.To != Medium {
		t.Errorf("adjustment = %+v", adj)
	}
	if tr != (Tracker{}) {
		t.Errorf("tracker not reset: %+v", tr)
	}
}

func TestApply_LowersAfterIncorrectStreak(t *testing.T) {
	p := DefaultPolicy()
	d, tr := Hard, Tracker{}

	d, tr, _ = p.Apply(d, tr, false)
	d, _, adj := p.Apply(d, tr, false)
	if d != Medium {
		t.Fatalf("difficulty = %s, want medium", d)
	}
	if adj == nil || adj.Reason != "2 incorrect in a row" {
		t.Errorf("adjustment = %+v", adj)
	}
}

func TestApply_ClampsAtBounds(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name    string
		start   Difficulty
		correct bool
		answers int
	}{
		{"hard stays hard", Hard, true, 3},
		{"easy stays easy", Easy, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, tr := tt.start, Tracker{}
			var adj *Adjustment
			for i := 0; i < tt.answers; i++ {
				d, tr, adj = p.Apply(d, tr, tt.correct)
			}
			if d != tt.start {
				t.Errorf("difficulty = %s, want %s", d, tt.start)
			}
			if adj != nil {
				t.Errorf("unexpected adjustment %+v", adj)
			}
			if tr != (Tracker{}) {
				t.Errorf("streak should reset at bound, got %+v", tr)
			}
		})
	}
}

func TestApply_MixedAnswersBreakStreak(t *testing.T) {
	p := DefaultPolicy()
	d, tr := Medium, Tracker{}

	for _, correct := range []bool{true, true, false, true, true, false} {
		var adj *Adjustment
		d, tr, adj = p.Apply(d, tr, correct)
		if adj != nil {
			t.Fatalf("unexpected adjustment %+v", adj)
		}
	}
	if d != Medium {
		t.Errorf("difficulty = %s, want medium", d)
	}
	if tr.IncorrectStreak != 1 || tr.CorrectStreak != 0 {
		t.Errorf("tracker = %+v", tr)
	}
}

func TestApply_AtMostOneStep(t *testing.T) {
	p := Policy{RaiseAfter: 1, LowerAfter: 1}
	for _, start := range AllDifficulties() {
		for _, correct := range []bool{true, false} {
			got, _, _ := p.Apply(start, Tracker{}, correct)
			step := int(got) - int(start)
			if step < -1 || step > 1 {
				t.Errorf("Apply(%s, %v) moved %d tiers", start, correct, step)
			}
			if !got.Valid() {
				t.Errorf("Apply(%s, %v) = %d out of range", start, correct, got)
			}
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in      string
		want    Difficulty
		wantErr bool
	}{
		{"", Easy, false},
		{"easy", Easy, false},
		{" Medium ", Medium, false},
		{"HARD", Hard, false},
		{"impossible", Easy, true},
	}
	for _, tt := range tests {
		got, err := ParseDifficulty(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDifficulty(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDifficulty(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestMultiplier(t *testing.T) {
	want := map[Difficulty]float64{Easy: 1.0, Medium: 1.5, Hard: 2.0}
	for d, m := range want {
		if got := d.Multiplier(); got != m {
			t.Errorf("%s.Multiplier() = %v, want %v", d, got, m)
		}
	}
}
