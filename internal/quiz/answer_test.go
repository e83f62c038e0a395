package quiz

import "testing"

func TestCheckAnswer(t *testing.T) {
	numericQ := func(answer string, at AnswerType) *Question {
		return &Question{Format: FormatNumeric, Answer: answer, AnswerType: at}
	}
	choiceQ := &Question{
		Format:     FormatMultipleChoice,
		Answer:     "hexagon",
		AnswerType: AnswerTypeText,
		Choices:    []string{"triangle", "hexagon", "square"},
	}

	tests := []struct {
		name   string
		q      *Question
		answer string
		want   bool
	}{
		{"integer exact", numericQ("42", AnswerTypeInteger), "42", true},
		{"integer padded", numericQ("42", AnswerTypeInteger), "  42 ", true},
		{"integer leading zero", numericQ("7", AnswerTypeInteger), "007", true},
		{"integer wrong", numericQ("42", AnswerTypeInteger), "41", false},
		{"integer with comma", numericQ("1200", AnswerTypeInteger), "1,200", true},
		{"decimal trailing zero", numericQ("3.5", AnswerTypeDecimal), "3.50", true},
		{"decimal as fraction", numericQ("0.5", AnswerTypeDecimal), "1/2", true},
		{"equivalent fraction", numericQ("1/2", AnswerTypeFraction), "2/4", true},
		{"mixed number", numericQ("3/2", AnswerTypeFraction), "1 1/2", true},
		{"wrong fraction", numericQ("3/4", AnswerTypeFraction), "2/3", false},
		{"zero denominator", numericQ("3/4", AnswerTypeFraction), "3/0", false},
		{"non numeric", numericQ("12", AnswerTypeInteger), "twelve", false},
		{"empty", numericQ("0", AnswerTypeInteger), "", false},
		{"blank", numericQ("0", AnswerTypeInteger), "   ", false},
		{"choice text", choiceQ, "Hexagon", true},
		{"choice index", choiceQ, "2", true},
		{"wrong choice index", choiceQ, "1", false},
		{"index out of range", choiceQ, "9", false},
		{"wrong choice text", choiceQ, "square", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckAnswer(tt.answer, tt.q); got != tt.want {
				t.Errorf("CheckAnswer(%q, %q) = %v, want %v", tt.answer, tt.q.Answer, got, tt.want)
			}
		})
	}
}

func TestCheckAnswer_NumericChoices(t *testing.T) {
	q := &Question{
		Format:     FormatMultipleChoice,
		Answer:     "3/4",
		AnswerType: AnswerTypeFraction,
		Choices:    []string{"1/2", "3/4", "2/3"},
	}
	for _, answer := range []string{"3/4", "6/8", "0.75", "2"} {
		if !CheckAnswer(answer, q) {
			t.Errorf("CheckAnswer(%q) = false, want true", answer)
		}
	}
	if CheckAnswer("1", q) {
		t.Error("choice 1 should be wrong")
	}
}

func TestCheckAnswer_ChoiceValueBeatsIndex(t *testing.T) {
	q := &Question{
		Format:     FormatMultipleChoice,
		Answer:     "3",
		AnswerType: AnswerTypeInteger,
		Choices:    []string{"5", "3", "1"},
	}
	tests := []struct {
		answer string
		want   bool
	}{
		{"3", true},
		{"2", true},
		{"5", false},
		{"1", false},
		{"4", false},
	}
	for _, tt := range tests {
		if got := CheckAnswer(tt.answer, q); got != tt.want {
			t.Errorf("CheckAnswer(%q) = %v, want %v", tt.answer, got, tt.want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"5", "5", true},
		{"-2 1/4", "-9/4", true},
		{"2.25", "9/4", true},
		{"1 -1/2", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := parseNumber(tt.in)
		if ok != tt.ok {
			t.Errorf("parseNumber(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got.RatString() != tt.want {
			t.Errorf("parseNumber(%q) = %s, want %s", tt.in, got.RatString(), tt.want)
		}
	}
}
