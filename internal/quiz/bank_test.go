package quiz

import (
	"context"
	"testing"

	"github.com/abhisek/sunny/internal/adaptive"
)

func TestBank_QuestionsPassValidation(t *testing.T) {
	bank := NewBank(42)
	validators := DefaultValidators()

	for _, topic := range BankTopics() {
		for _, d := range adaptive.AllDifficulties() {
			for i := 0; i < 50; i++ {
				q, err := bank.Generate(context.Background(), GenerateInput{Topic: topic, Difficulty: d})
				if err != nil {
					t.Fatalf("%s/%s: %v", topic, d, err)
				}
				if verr := runValidators(validators, q, GenerateInput{}); verr != nil {
					t.Fatalf("%s/%s: %q failed validation: %v", topic, d, q.Text, verr)
				}
				if !CheckAnswer(q.Answer, q) {
					t.Fatalf("%s/%s: own answer %q rejected for %q", topic, d, q.Answer, q.Text)
				}
			}
		}
	}
}

func TestBank_StampsQuestion(t *testing.T) {
	q, err := NewBank(7).Generate(context.Background(), GenerateInput{Topic: "division", Difficulty: adaptive.Medium})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.ID == "" || q.Topic != "division" || q.Difficulty != adaptive.Medium || !q.Demo {
		t.Errorf("question not stamped: %+v", q)
	}
}

func TestBank_UnknownTopicFallsBack(t *testing.T) {
	q, err := NewBank(7).Generate(context.Background(), GenerateInput{Topic: "astronomy"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Topic != "astronomy" {
		t.Errorf("topic = %q", q.Topic)
	}
	if q.Format != FormatNumeric {
		t.Errorf("expected an addition question, got %+v", q)
	}
}

func TestBank_AvoidsPriorQuestions(t *testing.T) {
	bank := NewBank(3)
	var prior []string
	for i := 0; i < 5; i++ {
		q, err := bank.Generate(context.Background(), GenerateInput{
			Topic:          "addition",
			Difficulty:     adaptive.Hard,
			PriorQuestions: prior,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, p := range prior {
			if p == q.Text {
				t.Fatalf("repeated question %q", q.Text)
			}
		}
		prior = append(prior, q.Text)
	}
}

func TestBank_SameSeedSameQuestions(t *testing.T) {
	a, b := NewBank(9), NewBank(9)
	for i := 0; i < 10; i++ {
		qa, _ := a.Generate(context.Background(), GenerateInput{Topic: "multiplication"})
		qb, _ := b.Generate(context.Background(), GenerateInput{Topic: "multiplication"})
		if qa.Text != qb.Text {
			t.Fatalf("question %d differs: %q vs %q", i, qa.Text, qb.Text)
		}
	}
}
