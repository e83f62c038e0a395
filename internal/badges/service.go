package badges

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/sunny/internal/store"
)

// Service awards badges and reads them back.
type Service struct {
	repo   store.BadgeRepo
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a badge Service. A nil logger disables logging.
func NewService(repo store.BadgeRepo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// AwardStreak awards a badge for consecutive correct answers within a quiz.
func (s *Service) AwardStreak(ctx context.Context, userID string, length int, topic, quizID string) *Award {
	return s.award(ctx, userID, &Award{
		Type:     TypeStreak,
		Rarity:   StreakRarity(length),
		Name:     fmt.Sprintf("%d in a Row", length),
		Topic:    topic,
		SourceID: quizID,
		Reason:   fmt.Sprintf("%d correct in a row!", length),
	})
}

// AwardDayStreak awards a badge for consecutive active days.
func (s *Service) AwardDayStreak(ctx context.Context, userID string, days int) *Award {
	return s.award(ctx, userID, &Award{
		Type:   TypeStreak,
		Rarity: DayStreakRarity(days),
		Name:   fmt.Sprintf("%d-Day Streak", days),
		Reason: fmt.Sprintf("Learned %d days in a row", days),
	})
}

// AwardQuiz awards a quiz-completion badge rated by accuracy.
func (s *Service) AwardQuiz(ctx context.Context, userID string, accuracy float64, topic, quizID string) *Award {
	return s.award(ctx, userID, &Award{
		Type:     TypeQuiz,
		Rarity:   QuizRarity(accuracy),
		Name:     "Quiz Complete",
		Topic:    topic,
		SourceID: quizID,
		Reason:   fmt.Sprintf("Quiz complete (%.0f%% accuracy)", accuracy*100),
	})
}

// AwardLevel awards a badge for reaching a new level.
func (s *Service) AwardLevel(ctx context.Context, userID string, level int) *Award {
	return s.award(ctx, userID, &Award{
		Type:   TypeLevel,
		Rarity: LevelRarity(level),
		Name:   fmt.Sprintf("Level %d", level),
		Reason: fmt.Sprintf("Reached level %d", level),
	})
}

// AwardMastery awards a badge for mastering a topic.
func (s *Service) AwardMastery(ctx context.Context, userID, topic string) *Award {
	return s.award(ctx, userID, &Award{
		Type:   TypeMastery,
		Rarity: RarityEpic,
		Name:   "Topic Master",
		Topic:  topic,
		Reason: fmt.Sprintf("Mastered %s", topic),
	})
}

// AwardSession awards a badge for finishing a learning session.
func (s *Service) AwardSession(ctx context.Context, userID, topic, sessionID string) *Award {
	return s.award(ctx, userID, &Award{
		Type:     TypeSession,
		Rarity:   RarityCommon,
		Name:     "Study Star",
		Topic:    topic,
		SourceID: sessionID,
		Reason:   fmt.Sprintf("Finished a %s session", topic),
	})
}

// Recent returns the user's latest badges, newest first.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]Award, error) {
	records, err := s.repo.ListByUser(ctx, userID, store.QueryOpts{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	out := make([]Award, len(records))
	for i, r := range records {
		out[i] = FromRecord(r)
	}
	return out, nil
}

// Counts returns the number of badges per type.
func (s *Service) Counts(ctx context.Context, userID string) (map[Type]int, error) {
	raw, err := s.repo.CountByType(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count badges: %w", err)
	}
	counts := make(map[Type]int, len(raw))
	for k, v := range raw {
		counts[Type(k)] = v
	}
	return counts, nil
}

// FromRecord converts a persisted badge.
func FromRecord(b store.Badge) Award {
	return Award{
		ID:        b.ID,
		Type:      Type(b.Type),
		Rarity:    Rarity(b.Rarity),
		Name:      b.Name,
		Topic:     b.Topic,
		SourceID:  b.SourceID,
		Reason:    b.Reason,
		AwardedAt: b.AwardedAt,
	}
}

// award stamps and persists a badge. A failed write is logged and the
// award is still returned.
func (s *Service) award(ctx context.Context, userID string, a *Award) *Award {
	a.ID = uuid.NewString()
	a.AwardedAt = s.now().UTC()
	if s.repo == nil {
		return a
	}
	err := s.repo.Award(ctx, &store.Badge{
		ID:        a.ID,
		UserID:    userID,
		Type:      string(a.Type),
		Rarity:    string(a.Rarity),
		Name:      a.Name,
		Reason:    a.Reason,
		Topic:     a.Topic,
		SourceID:  a.SourceID,
		AwardedAt: a.AwardedAt,
	})
	if err != nil {
		s.logger.Warn("failed to persist badge",
			zap.String("user_id", userID),
			zap.String("type", string(a.Type)),
			zap.Error(err))
	}
	return a
}

// ForSource returns the user's badges earned by one quiz or session.
func (s *Service) ForSource(ctx context.Context, userID, sourceID string) ([]Award, error) {
	all, err := s.Recent(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	out := make([]Award, 0)
	for _, a := range all {
		if a.SourceID == sourceID {
			out = append(out, a)
		}
	}
	return out, nil
}
