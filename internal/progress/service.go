package progress

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/sunny/internal/adaptive"
	"github.com/abhisek/sunny/internal/badges"
	"github.com/abhisek/sunny/internal/mastery"
	"github.com/abhisek/sunny/internal/store"
)

// ErrNegativeXP is returned when an award would reduce a user's XP.
var ErrNegativeXP = errors.New("xp award must not be negative")

// Config holds the tunables of the progress service.
type Config struct {
	Curve      Curve
	Awards     Awards
	Thresholds mastery.Thresholds
}

// DefaultConfig returns the standard progress configuration.
func DefaultConfig() Config {
	return Config{
		Curve:      DefaultCurve(),
		Awards:     DefaultAwards(),
		Thresholds: mastery.DefaultThresholds(),
	}
}

// XPObserver is notified of every XP award. The metrics collector
// implements it.
type XPObserver interface {
	ObserveXP(reason string, amount int)
}

// LevelUp describes a level change caused by an award.
type LevelUp struct {
	From  int           `json:"from"`
	To    int           `json:"to"`
	Badge *badges.Award `json:"badge,omitempty"`
}

// AwardResult is the outcome of AwardXP.
type AwardResult struct {
	Amount      int           `json:"amount"`
	Reason      string        `json:"reason"`
	Level       LevelInfo     `json:"level"`
	Streak      Streak        `json:"streak"`
	LevelUp     *LevelUp      `json:"level_up,omitempty"`
	StreakBadge *badges.Award `json:"streak_badge,omitempty"`
}

// TopicProgress is the display view of one topic's mastery.
type TopicProgress struct {
	Topic         string    `json:"topic"`
	Attempted     int       `json:"attempted"`
	Correct       int       `json:"correct"`
	Mastery       int       `json:"mastery"`
	State         string    `json:"state"`
	LastPracticed time.Time `json:"last_practiced"`
}

// Service applies XP, streak and mastery updates to user records.
type Service struct {
	users    store.UserRepo
	badges   *badges.Service
	cfg      Config
	logger   *zap.Logger
	observer XPObserver
	now      func() time.Time

	// mu serializes read-modify-write cycles on user records.
	mu sync.Mutex
}

// NewService creates a progress Service. badgeSvc may be nil.
func NewService(users store.UserRepo, badgeSvc *badges.Service, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:  users,
		badges: badgeSvc,
		cfg:    cfg,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetObserver registers an XP observer.
func (s *Service) SetObserver(o XPObserver) { s.observer = o }

// Curve returns the configured level curve.
func (s *Service) Curve() Curve { return s.cfg.Curve }

// Awards returns the configured XP table.
func (s *Service) Awards() Awards { return s.cfg.Awards }

// AwardXP adds amount XP to the user, touches the daily streak and awards
// level and day-streak badges. A zero amount only touches the streak.
func (s *Service) AwardXP(ctx context.Context, userID string, amount int, reason string) (*AwardResult, error) {
	if amount < 0 {
		return nil, ErrNegativeXP
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	now := s.now()
	curve := s.cfg.Curve
	oldLevel := curve.LevelFor(u.XP)

	u.XP += amount
	u.Level = curve.LevelFor(u.XP)

	streak := StreakOf(u)
	streakChanged := streak.Touch(now)
	applyStreak(u, streak)
	u.UpdatedAt = now

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	res := &AwardResult{
		Amount: amount,
		Reason: reason,
		Level:  curve.Info(u.XP),
		Streak: streak,
	}
	if u.Level > oldLevel {
		res.LevelUp = &LevelUp{From: oldLevel, To: u.Level}
		if s.badges != nil {
			res.LevelUp.Badge = s.badges.AwardLevel(ctx, userID, u.Level)
		}
	}
	if streakChanged && badges.IsDayMilestone(streak.Current) && s.badges != nil {
		res.StreakBadge = s.badges.AwardDayStreak(ctx, userID, streak.Current)
	}

	if s.observer != nil && amount > 0 {
		s.observer.ObserveXP(reason, amount)
	}
	s.logger.Debug("xp awarded",
		zap.String("user_id", userID),
		zap.Int("amount", amount),
		zap.String("reason", reason),
		zap.Int("xp", u.XP),
		zap.Int("level", u.Level))
	return res, nil
}

// RecordAnswer folds one answer into the user's mastery for topic. The
// answer is weighted by the difficulty multiplier. Returns the state
// transition, if any. Reaching mastery awards a badge.
func (s *Service) RecordAnswer(ctx context.Context, userID, topic string, correct bool, difficulty adaptive.Difficulty) (*mastery.StateTransition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	now := s.now()
	tm := mastery.FromRecord(topic, u.Progress[topic])
	tm.Decay(now, s.cfg.Thresholds)
	tr := tm.Record(correct, difficulty.Multiplier(), now, s.cfg.Thresholds)

	if u.Progress == nil {
		u.Progress = make(map[string]store.TopicProgress)
	}
	u.Progress[topic] = tm.ToRecord()
	u.UpdatedAt = now

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	if tr != nil {
		s.logger.Info("mastery transition",
			zap.String("user_id", userID),
			zap.String("topic", topic),
			zap.String("from", string(tr.From)),
			zap.String("to", string(tr.To)),
			zap.String("trigger", tr.Trigger))
		if tr.To == mastery.StateMastered && s.badges != nil {
			s.badges.AwardMastery(ctx, userID, topic)
		}
	}
	return tr, nil
}

// Reset clears the user's XP, level, streaks and topic progress.
func (s *Service) Reset(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	u.XP = 0
	u.Level = 1
	u.CurrentStreak = 0
	u.LongestStreak = 0
	u.LastActive = ""
	u.Progress = map[string]store.TopicProgress{}
	u.UpdatedAt = s.now()
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Topics returns the user's topic progress sorted by topic, with time
// decay applied as of now.
func (s *Service) Topics(u *store.User) []TopicProgress {
	now := s.now()
	out := make([]TopicProgress, 0, len(u.Progress))
	for topic, rec := range u.Progress {
		tm := mastery.FromRecord(topic, rec)
		tm.Decay(now, s.cfg.Thresholds)
		out = append(out, TopicProgress{
			Topic:         topic,
			Attempted:     tm.Attempted,
			Correct:       tm.Correct,
			Mastery:       tm.Percent(),
			State:         string(tm.State),
			LastPracticed: tm.LastPracticed,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Topic < out[j].Topic })
	return out
}

// StreakOf reads the daily streak stored on a user.
func StreakOf(u *store.User) Streak {
	return Streak{Current: u.CurrentStreak, Longest: u.LongestStreak, LastActive: u.LastActive}
}

func applyStreak(u *store.User, st Streak) {
	u.CurrentStreak = st.Current
	u.LongestStreak = st.Longest
	u.LastActive = st.LastActive
}
