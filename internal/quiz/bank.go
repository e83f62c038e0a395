package quiz

import (
	"context"
	"fmt"
	"math/big"
	"math/rand/v2"
	"slices"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/sunny/internal/adaptive"
)

// DefaultTopic is used when the learner does not pick a topic.
const DefaultTopic = "addition"

// maxDedupTries bounds how often the bank redraws to avoid a repeat.
const maxDedupTries = 10

type bankFunc func(r *rand.Rand, d adaptive.Difficulty) *Question

var bankTopics = map[string]bankFunc{
	"addition":       bankAddition,
	"subtraction":    bankSubtraction,
	"multiplication": bankMultiplication,
	"division":       bankDivision,
	"fractions":      bankFractions,
	"shapes":         bankShapes,
}

// BankTopics lists the topics the built-in bank can generate, sorted.
func BankTopics() []string {
	topics := make([]string, 0, len(bankTopics))
	for t := range bankTopics {
		topics = append(topics, t)
	}
	slices.Sort(topics)
	return topics
}

// Bank is a Generator that builds questions from templates without an
// LLM. Unknown topics are served addition questions. Questions are
// marked Demo.
type Bank struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewBank creates a question bank seeded with seed.
func NewBank(seed uint64) *Bank {
	return &Bank{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (b *Bank) Generate(_ context.Context, input GenerateInput) (*Question, error) {
	fn, ok := bankTopics[input.Topic]
	if !ok {
		fn = bankTopics[DefaultTopic]
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var q *Question
	for range maxDedupTries {
		q = fn(b.rng, input.Difficulty)
		if !slices.Contains(input.PriorQuestions, q.Text) {
			break
		}
	}
	q.ID = uuid.NewString()
	q.Topic = input.Topic
	q.Difficulty = input.Difficulty
	q.Demo = true
	return q, nil
}

// between returns a random int in [lo, hi].
func between(r *rand.Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}

func numeric(text, answer, hint, explanation string) *Question {
	return &Question{
		Text:        text,
		Format:      FormatNumeric,
		Answer:      answer,
		AnswerType:  AnswerTypeInteger,
		Hint:        hint,
		Explanation: explanation,
	}
}

func bankAddition(r *rand.Rand, d adaptive.Difficulty) *Question {
	lo, hi := []int{1, 10, 100}[d], []int{10, 99, 999}[d]
	a, b := between(r, lo, hi), between(r, lo, hi)
	return numeric(
		fmt.Sprintf("What is %d + %d?", a, b),
		strconv.Itoa(a+b),
		"Start with the bigger number and count on.",
		fmt.Sprintf("%d + %d = %d", a, b, a+b),
	)
}

func bankSubtraction(r *rand.Rand, d adaptive.Difficulty) *Question {
	lo, hi := []int{1, 10, 100}[d], []int{10, 99, 999}[d]
	a, b := between(r, lo, hi), between(r, lo, hi)
	if b > a {
		a, b = b, a
	}
	return numeric(
		fmt.Sprintf("What is %d - %d?", a, b),
		strconv.Itoa(a-b),
		"Count back from the first number.",
		fmt.Sprintf("%d - %d = %d", a, b, a-b),
	)
}

func bankMultiplication(r *rand.Rand, d adaptive.Difficulty) *Question {
	var a, b int
	switch d {
	case adaptive.Easy:
		a, b = between(r, 1, 5), between(r, 1, 5)
	case adaptive.Medium:
		a, b = between(r, 2, 10), between(r, 2, 10)
	default:
		a, b = between(r, 6, 12), between(r, 11, 25)
	}
	return numeric(
		fmt.Sprintf("What is %d * %d?", a, b),
		strconv.Itoa(a*b),
		fmt.Sprintf("Think of %d groups of %d.", a, b),
		fmt.Sprintf("%d groups of %d make %d.", a, b, a*b),
	)
}

func bankDivision(r *rand.Rand, d adaptive.Difficulty) *Question {
	var divisor, quotient int
	switch d {
	case adaptive.Easy:
		divisor, quotient = between(r, 1, 5), between(r, 1, 5)
	case adaptive.Medium:
		divisor, quotient = between(r, 2, 10), between(r, 2, 10)
	default:
		divisor, quotient = between(r, 6, 12), between(r, 11, 20)
	}
	dividend := divisor * quotient
	return numeric(
		fmt.Sprintf("What is %d / %d?", dividend, divisor),
		strconv.Itoa(quotient),
		fmt.Sprintf("How many groups of %d fit into %d?", divisor, dividend),
		fmt.Sprintf("%d x %d = %d, so %d / %d = %d.", divisor, quotient, dividend, dividend, divisor, quotient),
	)
}

func bankFractions(r *rand.Rand, d adaptive.Difficulty) *Question {
	var a, b *big.Rat
	op := "+"
	switch d {
	case adaptive.Easy:
		den := between(r, 2, 8)
		a = big.NewRat(int64(between(r, 1, den-1)), int64(den))
		b = big.NewRat(int64(between(r, 1, den-1)), int64(den))
	case adaptive.Medium:
		a = big.NewRat(1, int64(between(r, 2, 6)))
		b = big.NewRat(1, int64(between(r, 2, 6)))
	default:
		op = "*"
		a = big.NewRat(int64(between(r, 1, 5)), int64(between(r, 2, 9)))
		b = big.NewRat(int64(between(r, 1, 5)), int64(between(r, 2, 9)))
	}

	result, _ := apply(a, op, b)
	q := numeric(
		fmt.Sprintf("What is %s %s %s?", fractionText(a), op, fractionText(b)),
		result.RatString(),
		"Make the bottom numbers match before adding.",
		fmt.Sprintf("%s %s %s = %s", fractionText(a), op, fractionText(b), result.RatString()),
	)
	if op == "*" {
		q.Hint = "Multiply the tops, then multiply the bottoms."
	}
	if !result.IsInt() {
		q.AnswerType = AnswerTypeFraction
	}
	return q
}

// fractionText renders r as "a/b", keeping whole numbers as "n/1".
func fractionText(r *big.Rat) string {
	return r.Num().String() + "/" + r.Denom().String()
}

var shapes = []struct {
	name  string
	sides int
}{
	{"triangle", 3},
	{"square", 4},
	{"pentagon", 5},
	{"hexagon", 6},
	{"octagon", 8},
}

func bankShapes(r *rand.Rand, d adaptive.Difficulty) *Question {
	target := shapes[r.IntN(len(shapes))]
	if d == adaptive.Easy {
		return numeric(
			fmt.Sprintf("How many sides does a %s have?", target.name),
			strconv.Itoa(target.sides),
			"Trace the edges with your finger and count.",
			fmt.Sprintf("A %s has %d sides.", target.name, target.sides),
		)
	}

	choices := []string{target.name}
	for _, i := range r.Perm(len(shapes)) {
		if len(choices) == MaxChoices {
			break
		}
		if shapes[i].name != target.name {
			choices = append(choices, shapes[i].name)
		}
	}
	r.Shuffle(len(choices), func(i, j int) { choices[i], choices[j] = choices[j], choices[i] })

	return &Question{
		Text:        fmt.Sprintf("Which shape has %d sides?", target.sides),
		Format:      FormatMultipleChoice,
		Answer:      target.name,
		AnswerType:  AnswerTypeText,
		Choices:     choices,
		Hint:        "Picture each shape and count its corners.",
		Explanation: fmt.Sprintf("A %s has %d sides.", target.name, target.sides),
	}
}
