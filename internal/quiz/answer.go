package quiz

import (
	"math/big"
	"strconv"
	"strings"
)

// CheckAnswer compares the learner's input against the correct answer.
//
// Normalization rules:
//   - whitespace is trimmed and comparison is case-insensitive
//   - numbers compare by value, so "2/4" matches "1/2", "3.50" matches
//     "3.5", "007" matches "7" and "0.5" matches "1/2"
//   - mixed numbers are accepted ("1 1/2" matches "3/2")
//   - multiple choice matches the choice text or its 1-based index
//
// An empty answer is always wrong.
func CheckAnswer(learnerAnswer string, q *Question) bool {
	learnerAnswer = strings.TrimSpace(learnerAnswer)
	if learnerAnswer == "" {
		return false
	}

	if q.Format == FormatMultipleChoice {
		return checkMultipleChoice(learnerAnswer, q)
	}
	if q.AnswerType == AnswerTypeText {
		return sameText(learnerAnswer, q.Answer)
	}

	got, ok := parseNumber(learnerAnswer)
	if !ok {
		return false
	}
	want, ok := parseNumber(q.Answer)
	if !ok {
		return sameText(learnerAnswer, q.Answer)
	}
	return got.Cmp(want) == 0
}

// checkMultipleChoice prefers a choice's value over its index, so "3"
// among choices {"5", "3", "1"} is the choice "3", not the third one.
func checkMultipleChoice(learnerAnswer string, q *Question) bool {
	for _, c := range q.Choices {
		if answersEqual(learnerAnswer, c, q.AnswerType) {
			return answersEqual(learnerAnswer, q.Answer, q.AnswerType)
		}
	}
	if idx, err := strconv.Atoi(learnerAnswer); err == nil && idx >= 1 && idx <= len(q.Choices) {
		return answersEqual(q.Choices[idx-1], q.Answer, q.AnswerType)
	}
	return answersEqual(learnerAnswer, q.Answer, q.AnswerType)
}

// answersEqual compares two answers by value when both are numeric and by
// case-insensitive text otherwise.
func answersEqual(a, b string, answerType AnswerType) bool {
	if answerType != AnswerTypeText {
		na, okA := parseNumber(a)
		nb, okB := parseNumber(b)
		if okA && okB {
			return na.Cmp(nb) == 0
		}
	}
	return sameText(a, b)
}

func sameText(a, b string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(a), " "), strings.Join(strings.Fields(b), " "))
}

// parseNumber parses integers, decimals, fractions and mixed numbers
// ("2 3/4") into an exact rational.
func parseNumber(s string) (*big.Rat, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return nil, false
	}

	if whole, frac, ok := strings.Cut(s, " "); ok && strings.Contains(frac, "/") {
		w, ok := new(big.Rat).SetString(strings.TrimSpace(whole))
		if !ok || !w.IsInt() {
			return nil, false
		}
		f, ok := parseFraction(strings.TrimSpace(frac))
		if !ok || f.Sign() < 0 {
			return nil, false
		}
		if w.Sign() < 0 {
			return w.Sub(w, f), true
		}
		return w.Add(w, f), true
	}

	if strings.Contains(s, "/") {
		return parseFraction(s)
	}
	r, ok := new(big.Rat).SetString(s)
	return r, ok
}

func parseFraction(s string) (*big.Rat, bool) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return nil, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
	if err != nil {
		return nil, false
	}
	d, err := strconv.ParseInt(strings.TrimSpace(den), 10, 64)
	if err != nil || d == 0 {
		return nil, false
	}
	return big.NewRat(n, d), true
}
