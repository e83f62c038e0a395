// Package dashboard assembles the learner's progress overview.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/sunny/internal/badges"
	"github.com/abhisek/sunny/internal/progress"
	"github.com/abhisek/sunny/internal/quiz"
	"github.com/abhisek/sunny/internal/store"
)

// Profile is the public part of a user record.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Grade     int       `json:"grade"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileOf strips private fields from u.
func ProfileOf(u *store.User) Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email, Grade: u.Grade, CreatedAt: u.CreatedAt}
}

// Streak is the daily streak as shown to the learner.
type Streak struct {
	Current    int    `json:"current"`
	Longest    int    `json:"longest"`
	LastActive string `json:"last_active,omitempty"`
}

// Dashboard is the full progress overview.
type Dashboard struct {
	Profile          Profile                  `json:"profile"`
	Level            progress.LevelInfo       `json:"level"`
	Streak           Streak                   `json:"streak"`
	Topics           []progress.TopicProgress `json:"topics"`
	RecentQuizzes    []quiz.ListItem          `json:"recent_quizzes"`
	BadgeCounts      map[badges.Type]int      `json:"badge_counts"`
	RecentBadges     []badges.Award           `json:"recent_badges"`
	NoteCount        int                      `json:"note_count"`
	RecommendedTopic string                   `json:"recommended_topic"`
}

// Config bounds the lists on the dashboard.
type Config struct {
	RecentQuizzes int
	RecentBadges  int
	StarterTopic  string
}

// DefaultConfig returns the standard dashboard limits.
func DefaultConfig() Config {
	return Config{RecentQuizzes: 5, RecentBadges: 5, StarterTopic: quiz.DefaultTopic}
}

// Builder reads the dashboard from the services that own each part.
type Builder struct {
	users    store.UserRepo
	notes    store.NoteRepo
	quizzes  *quiz.Service
	progress *progress.Service
	badges   *badges.Service
	cfg      Config
	now      func() time.Time
}

// NewBuilder creates a dashboard Builder.
func NewBuilder(users store.UserRepo, notes store.NoteRepo, quizzes *quiz.Service, prog *progress.Service, badgeSvc *badges.Service, cfg Config) *Builder {
	return &Builder{
		users:    users,
		notes:    notes,
		quizzes:  quizzes,
		progress: prog,
		badges:   badgeSvc,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Build returns the dashboard for userID.
func (b *Builder) Build(ctx context.Context, userID string) (*Dashboard, error) {
	u, err := b.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	st := progress.StreakOf(u)
	topics := b.progress.Topics(u)
	d := &Dashboard{
		Profile: ProfileOf(u),
		Level:   b.progress.Curve().Info(u.XP),
		Streak: Streak{
			Current:    st.Effective(b.now()),
			Longest:    st.Longest,
			LastActive: st.LastActive,
		},
		Topics:           topics,
		RecommendedTopic: progress.Recommend(topics, b.cfg.StarterTopic),
	}

	if d.RecentQuizzes, err = b.quizzes.List(ctx, userID, b.cfg.RecentQuizzes); err != nil {
		return nil, err
	}
	if d.BadgeCounts, err = b.badges.Counts(ctx, userID); err != nil {
		return nil, err
	}
	if d.RecentBadges, err = b.badges.Recent(ctx, userID, b.cfg.RecentBadges); err != nil {
		return nil, err
	}
	if d.NoteCount, err = b.notes.CountByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("count notes: %w", err)
	}
	return d, nil
}
