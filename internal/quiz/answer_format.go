package quiz

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var fractionPattern = regexp.MustCompile(`^-?\d+/\d+$`)

// Choice count bounds for multiple choice questions.
const (
	MinChoices = 3
	MaxChoices = 4
)

// AnswerFormatValidator checks that the answer matches its declared type
// and that multiple choice constraints hold.
type AnswerFormatValidator struct{}

func (v *AnswerFormatValidator) Name() string { return "answer-format" }

func (v *AnswerFormatValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...), Retryable: true}
	}

	var err error
	switch q.AnswerType {
	case AnswerTypeInteger:
		err = validateInteger(q.Answer)
	case AnswerTypeDecimal:
		err = validateDecimal(q.Answer)
	case AnswerTypeFraction:
		err = validateFraction(q.Answer)
	}
	if err != nil {
		return fail("invalid %s answer %q: %s", q.AnswerType, q.Answer, err)
	}

	if q.Format == FormatNumeric {
		if len(q.Choices) > 0 {
			return fail("numeric format must have empty choices")
		}
		return nil
	}

	if len(q.Choices) < MinChoices || len(q.Choices) > MaxChoices {
		return fail("multiple choice needs %d-%d choices, got %d", MinChoices, MaxChoices, len(q.Choices))
	}
	seen := make(map[string]bool, len(q.Choices))
	matches := 0
	for i, c := range q.Choices {
		c = strings.TrimSpace(c)
		if c == "" {
			return fail("choice %d is empty", i+1)
		}
		key := strings.ToLower(c)
		if seen[key] {
			return fail("duplicate choice %q", c)
		}
		seen[key] = true
		if answersEqual(c, q.Answer, q.AnswerType) {
			matches++
		}
	}
	if matches != 1 {
		return fail("answer %q must match exactly one choice, matched %d", q.Answer, matches)
	}
	return nil
}

// validateInteger rejects leading zeros and non-integers.
func validateInteger(s string) error {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("not a valid integer")
	}
	if strconv.FormatInt(n, 10) != s {
		return fmt.Errorf("has leading zeros")
	}
	return nil
}

// validateDecimal rejects trailing zeros and non-numbers.
func validateDecimal(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a valid decimal")
	}
	if normalized := strconv.FormatFloat(f, 'f', -1, 64); normalized != s {
		return fmt.Errorf("not normalized (expected %q)", normalized)
	}
	return nil
}

// validateFraction requires a/b with a positive denominator in lowest terms.
func validateFraction(s string) error {
	if !fractionPattern.MatchString(s) {
		return fmt.Errorf("does not match fraction pattern a/b")
	}
	r, ok := parseFraction(s)
	if !ok {
		return fmt.Errorf("denominator must be positive")
	}
	if r.String() != s {
		return fmt.Errorf("fraction is not in lowest terms")
	}
	return nil
}
