package quiz

import (
	"fmt"
	"math/big"
	"regexp"
)

// MathCheckValidator recomputes the answer of plain arithmetic questions
// and rejects questions whose claimed answer disagrees. Word problems and
// other non-computable questions pass through.
type MathCheckValidator struct{}

func (v *MathCheckValidator) Name() string { return "math-check" }

func (v *MathCheckValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	if q.Format != FormatNumeric {
		return nil
	}
	computed, ok := computeAnswer(q.Text)
	if !ok {
		return nil
	}
	claimed, ok := parseNumber(q.Answer)
	if !ok || computed.Cmp(claimed) != 0 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("computed %s but answer claims %q", computed.RatString(), q.Answer),
			Retryable: true,
		}
	}
	return nil
}

var (
	// "a/b + c/d" with +, -, *, x, ×, ÷.
	fractionArithRe = regexp.MustCompile(`(-?\d+)\s*/\s*(\d+)\s*([+\-*×x÷])\s*(-?\d+)\s*/\s*(\d+)`)

	// Integer or decimal arithmetic with +, -, *, x, ×.
	numberArithRe = regexp.MustCompile(`(?:^|[^\d/.])(-?\d+(?:\.\d+)?)\s*([+\-*×x])\s*(-?\d+(?:\.\d+)?)(?:[^\d/]|$)`)

	// Division needs spaces around "/" to tell it from a fraction (144 / 12 vs 3/4).
	numberDivRe = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*(?:÷|\s/\s)\s*(-?\d+(?:\.\d+)?)`)
)

// computeAnswer extracts a single binary expression from text and
// evaluates it exactly.
func computeAnswer(text string) (*big.Rat, bool) {
	if m := fractionArithRe.FindStringSubmatch(text); m != nil {
		a, okA := parseFraction(m[1] + "/" + m[2])
		b, okB := parseFraction(m[4] + "/" + m[5])
		if !okA || !okB {
			return nil, false
		}
		return apply(a, m[3], b)
	}
	if m := numberArithRe.FindStringSubmatch(text); m != nil {
		return applyStrings(m[1], m[2], m[3])
	}
	if m := numberDivRe.FindStringSubmatch(text); m != nil {
		return applyStrings(m[1], "/", m[2])
	}
	return nil, false
}

func applyStrings(a, op, b string) (*big.Rat, bool) {
	ra, okA := new(big.Rat).SetString(a)
	rb, okB := new(big.Rat).SetString(b)
	if !okA || !okB {
		return nil, false
	}
	return apply(ra, op, rb)
}

func apply(a *big.Rat, op string, b *big.Rat) (*big.Rat, bool) {
	r := new(big.Rat)
	switch op {
	case "+":
		return r.Add(a, b), true
	case "-":
		return r.Sub(a, b), true
	case "*", "x", "×":
		return r.Mul(a, b), true
	case "/", "÷":
		if b.Sign() == 0 {
			return nil, false
		}
		return r.Quo(a, b), true
	}
	return nil, false
}
