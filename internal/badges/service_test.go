package badges

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/sunny/internal/store"
)

// mockBadgeRepo implements store.BadgeRepo for badge tests.
type mockBadgeRepo struct {
	awarded []store.Badge
	err     error
}

func (m *mockBadgeRepo) Award(_ context.Context, b *store.Badge) error {
	if m.err != nil {
		return m.err
	}
	m.awarded = append(m.awarded, *b)
	return nil
}

func (m *mockBadgeRepo) ListByUser(_ context.Context, userID string, opts store.QueryOpts) ([]store.Badge, error) {
	var out []store.Badge
	for i := len(m.awarded) - 1; i >= 0; i-- {
		if m.awarded[i].UserID == userID {
			out = append(out, m.awarded[i])
		}
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

func (m *mockBadgeRepo) CountByType(_ context.Context, userID string) (map[string]int, error) {
	counts := map[string]int{}
	for _, b := range m.awarded {
		if b.UserID == userID {
			counts[b.Type]++
		}
	}
	return counts, nil
}

func newTestService() (*Service, *mockBadgeRepo) {
	repo := &mockBadgeRepo{}
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestAwardStreak(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	award := svc.AwardStreak(ctx, "u1", 10, "fractions", "quiz-1")
	if award.Type != TypeStreak {
		t.Errorf("type = %q, want streak", award.Type)
	}
	if award.Rarity != RarityRare {
		t.Errorf("rarity = %q, want rare", award.Rarity)
	}
	if award.Reason != "10 correct in a row!" {
		t.Errorf("reason = %q", award.Reason)
	}
	if len(repo.awarded) != 1 {
		t.Fatalf("expected 1 persisted badge, got %d", len(repo.awarded))
	}
	got := repo.awarded[0]
	if got.UserID != "u1" || got.SourceID != "quiz-1" || got.Topic != "fractions" {
		t.Errorf("persisted badge = %+v", got)
	}
}

func TestAwardQuiz(t *testing.T) {
	svc, _ := newTestService()

	award := svc.AwardQuiz(context.Background(), "u1", 0.8, "addition", "quiz-2")
	if award.Rarity != RarityEpic {
		t.Errorf("rarity = %q, want epic", award.Rarity)
	}
	if award.Reason != "Quiz complete (80% accuracy)" {
		t.Errorf("reason = %q", award.Reason)
	}
}

func TestAwardLevelAndMastery(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	svc.AwardLevel(ctx, "u1", 5)
	svc.AwardMastery(ctx, "u1", "shapes")
	svc.AwardDayStreak(ctx, "u1", 7)

	counts, err := svc.Counts(ctx, "u1")
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts[TypeLevel] != 1 || counts[TypeMastery] != 1 || counts[TypeStreak] != 1 {
		t.Errorf("counts = %v", counts)
	}
	if repo.awarded[0].Rarity != string(RarityRare) {
		t.Errorf("level 5 rarity = %q, want rare", repo.awarded[0].Rarity)
	}
}

func TestAwardPersistFailureStillReturns(t *testing.T) {
	repo := &mockBadgeRepo{err: errors.New("db down")}
	svc := NewService(repo, nil)

	award := svc.AwardSession(context.Background(), "u1", "shapes", "s1")
	if award == nil || award.ID == "" {
		t.Fatalf("expected award with ID, got %+v", award)
	}
}

func TestRecent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	svc.AwardLevel(ctx, "u1", 2)
	svc.AwardLevel(ctx, "u1", 3)
	svc.AwardLevel(ctx, "u2", 2)

	recent, err := svc.Recent(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 || recent[0].Name != "Level 3" {
		t.Errorf("recent = %+v", recent)
	}
}
