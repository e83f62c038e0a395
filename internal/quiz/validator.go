package quiz

import "fmt"

// Validator checks a generated question for correctness.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier, e.g. "structural" or "math-check".
	Name() string

	// Validate returns nil if the question passes.
	Validate(q *Question, input GenerateInput) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string
	Message   string
	Retryable bool // whether regeneration is likely to fix this
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// DefaultValidators returns the standard validator chain.
func DefaultValidators() []Validator {
	return []Validator{
		&StructuralValidator{},
		&AnswerFormatValidator{},
		&MathCheckValidator{},
	}
}

// runValidators runs validators in order and stops at the first failure.
func runValidators(vs []Validator, q *Question, input GenerateInput) *ValidationError {
	for _, v := range vs {
		if verr := v.Validate(q, input); verr != nil {
			return verr
		}
	}
	return nil
}
