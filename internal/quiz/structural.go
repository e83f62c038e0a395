package quiz

const (
	maxQuestionLen    = 500
	maxExplanationLen = 1000
)

// StructuralValidator checks required fields, length limits and enum values.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	fail := func(msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: msg, Retryable: true}
	}

	switch {
	case q.Text == "":
		return fail("question text is empty")
	case len(q.Text) > maxQuestionLen:
		return fail("question text exceeds 500 characters")
	case q.Answer == "":
		return fail("answer is empty")
	case q.Explanation == "":
		return fail("explanation is empty")
	case len(q.Explanation) > maxExplanationLen:
		return fail("explanation exceeds 1000 characters")
	case q.Format != FormatNumeric && q.Format != FormatMultipleChoice:
		return fail(`format must be "numeric" or "multiple_choice"`)
	}

	switch q.AnswerType {
	case AnswerTypeInteger, AnswerTypeDecimal, AnswerTypeFraction:
	case AnswerTypeText:
		if q.Format != FormatMultipleChoice {
			return fail(`answer_type "text" must use "multiple_choice" format`)
		}
	default:
		return fail(`answer_type must be "integer", "decimal", "fraction", or "text"`)
	}
	return nil
}
