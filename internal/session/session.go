// Package session runs guided learning sessions: a short plan of
// activities that the learner steps through one at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/sunny/internal/badges"
	"github.com/abhisek/sunny/internal/progress"
	"github.com/abhisek/sunny/internal/store"
)

var (
	// ErrSessionCompleted is returned when continuing a finished session.
	ErrSessionCompleted = errors.New("session already completed")
	// ErrInvalidMinutes is returned for a session length out of range.
	ErrInvalidMinutes = errors.New("session length out of range")
)

// StartResult is returned when a session starts.
type StartResult struct {
	SessionID  string    `json:"session_id"`
	Topic      string    `json:"topic"`
	Greeting   string    `json:"greeting"`
	Activity   Activity  `json:"activity"`
	Step       int       `json:"step"`
	TotalSteps int       `json:"total_steps"`
	Plan       *Plan     `json:"plan"`
	Demo       bool      `json:"demo"`
	StartedAt  time.Time `json:"started_at"`
}

// ContinueResult is returned when a session advances.
type ContinueResult struct {
	SessionID  string            `json:"session_id"`
	Message    string            `json:"message"`
	Activity   *Activity         `json:"activity,omitempty"`
	Step       int               `json:"step"`
	TotalSteps int               `json:"total_steps"`
	Completed  bool              `json:"completed"`
	XPEarned   int               `json:"xp_earned"`
	Badge      *badges.Award     `json:"badge,omitempty"`
	LevelUp    *progress.LevelUp `json:"level_up,omitempty"`
	Demo       bool              `json:"demo"`
}

// Service runs learning sessions.
type Service struct {
	sessions store.SessionRepo
	users    store.UserRepo
	planner  Planner
	coach    Coach
	progress *progress.Service
	badges   *badges.Service
	starter  string
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a session Service. A nil planner or coach uses the
// canned implementation. starter is the topic for learners with no
// history.
func NewService(sessions store.SessionRepo, users store.UserRepo, planner Planner, coach Coach, prog *progress.Service, badgeSvc *badges.Service, starter string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sessions: sessions,
		users:    users,
		planner:  planner,
		coach:    coach,
		progress: prog,
		badges:   badgeSvc,
		starter:  starter,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start plans and persists a new session and returns its first activity.
// An empty topic picks the recommended topic for the learner and zero
// minutes uses DefaultMinutes.
func (s *Service) Start(ctx context.Context, userID, topic string, minutes int, mood string) (*StartResult, error) {
	if minutes == 0 {
		minutes = DefaultMinutes
	}
	if minutes < MinMinutes || minutes > MaxMinutes {
		return nil, fmt.Errorf("%w: %d (allowed %d-%d)", ErrInvalidMinutes, minutes, MinMinutes, MaxMinutes)
	}

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	topics := s.progress.Topics(u)
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		topic = progress.Recommend(topics, s.starter)
	}
	input := PlanInput{Topic: topic, Grade: u.Grade, Minutes: minutes, Mood: strings.TrimSpace(mood)}
	for _, tp := range topics {
		if tp.Topic == topic {
			input.Mastery = tp.Mastery
		}
	}

	plan, demo := s.buildPlan(ctx, input)

	now := s.now()
	sess := &store.LearningSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Topic:     topic,
		Mood:      input.Mood,
		Minutes:   minutes,
		Plan:      plan.ToRecord(),
		Status:    store.StatusActive,
		Demo:      demo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("session started",
		zap.String("user_id", userID),
		zap.String("session_id", sess.ID),
		zap.String("topic", topic),
		zap.Int("minutes", minutes),
		zap.Int("activities", len(plan.Activities)),
		zap.Bool("demo", demo))

	return &StartResult{
		SessionID:  sess.ID,
		Topic:      topic,
		Greeting:   plan.Greeting,
		Activity:   plan.Activities[0],
		Step:       1,
		TotalSteps: len(plan.Activities),
		Plan:       plan,
		Demo:       demo,
		StartedAt:  now,
	}, nil
}

// Continue finishes the current activity and moves to the next one.
// Finishing the last activity completes the session and awards XP and a
// badge.
func (s *Service) Continue(ctx context.Context, userID, sessionID, reflection string) (*ContinueResult, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.UserID != userID {
		return nil, fmt.Errorf("load session: %w", store.ErrNotFound)
	}
	if sess.Status == store.StatusCompleted {
		return nil, ErrSessionCompleted
	}

	plan := PlanFromRecord(sess.Plan)
	now := s.now()
	sess.Step++
	sess.UpdatedAt = now

	res := &ContinueResult{SessionID: sess.ID, TotalSteps: len(plan.Activities)}
	input := StepInput{Topic: sess.Topic, Mood: sess.Mood, Reflection: strings.TrimSpace(reflection)}
	if sess.Step < len(plan.Activities) {
		next := plan.Activities[sess.Step]
		input.Next = &next
		res.Activity = &next
		res.Step = sess.Step + 1
	} else {
		sess.Status = store.StatusCompleted
		sess.CompletedAt = &now
		sess.XPEarned += s.progress.Awards().SessionComplete
		res.Completed = true
		res.Step = len(plan.Activities)
		res.XPEarned = s.progress.Awards().SessionComplete
	}

	msg, demo := s.stepMessage(ctx, input)
	res.Message = msg
	res.Demo = demo || sess.Demo
	sess.Demo = res.Demo

	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if res.Completed {
		award, err := s.progress.AwardXP(ctx, userID, res.XPEarned, "session-complete")
		if err != nil {
			s.logger.Warn("failed to award session xp", zap.String("session_id", sess.ID), zap.Error(err))
		} else {
			res.LevelUp = award.LevelUp
		}
		if s.badges != nil {
			res.Badge = s.badges.AwardSession(ctx, userID, sess.Topic, sess.ID)
		}
		s.logger.Info("session completed",
			zap.String("user_id", userID),
			zap.String("session_id", sess.ID),
			zap.Int("xp", res.XPEarned))
	}
	return res, nil
}

// buildPlan asks the planner and falls back to the canned plan. The
// second return value reports whether the canned plan was used.
func (s *Service) buildPlan(ctx context.Context, input PlanInput) (*Plan, bool) {
	if s.planner != nil {
		plan, err := s.planner.BuildPlan(ctx, input)
		if err == nil {
			return plan, false
		}
		s.logger.Warn("session planning failed, using canned plan",
			zap.String("topic", input.Topic),
			zap.Error(err))
	}
	plan, _ := CannedPlanner{}.BuildPlan(ctx, input)
	return plan, true
}

func (s *Service) stepMessage(ctx context.Context, input StepInput) (string, bool) {
	if s.coach != nil {
		msg, err := s.coach.Message(ctx, input)
		if err == nil {
			return msg, false
		}
		s.logger.Warn("session step message failed, using canned message",
			zap.String("topic", input.Topic),
			zap.Error(err))
	}
	msg, _ := CannedCoach{}.Message(ctx, input)
	return msg, true
}
