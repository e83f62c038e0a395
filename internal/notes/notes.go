// Package notes manages learner notes: short free-text comments tagged
// with a type and a priority.
package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/sunny/internal/store"
)

// Type classifies a note.
type Type string

const (
	TypeGeneral  Type = "general"
	TypeQuestion Type = "question"
	TypeFeedback Type = "feedback"
	TypeReminder Type = "reminder"
)

// Priority ranks a note.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// MaxContentLen is the longest accepted note, in characters.
const MaxContentLen = 5000

// ErrInvalidNote wraps every validation failure.
var ErrInvalidNote = errors.New("invalid note")

// ParseType parses a note type. Empty means general.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TypeGeneral, nil
	case TypeGeneral, TypeQuestion, TypeFeedback, TypeReminder:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown type %q", ErrInvalidNote, s)
}

// ParsePriority parses a priority. Empty means medium.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidNote, s)
}

// Input is the editable part of a note.
type Input struct {
	Content  string
	Type     string
	Priority string
}

func (in Input) normalize() (content string, t Type, p Priority, err error) {
	content = strings.TrimSpace(in.Content)
	if content == "" {
		return "", "", "", fmt.Errorf("%w: content is empty", ErrInvalidNote)
	}
	if utf8.RuneCountInString(content) > MaxContentLen {
		return "", "", "", fmt.Errorf("%w: content exceeds %d characters", ErrInvalidNote, MaxContentLen)
	}
	if t, err = ParseType(in.Type); err != nil {
		return "", "", "", err
	}
	if p, err = ParsePriority(in.Priority); err != nil {
		return "", "", "", err
	}
	return content, t, p, nil
}

// Service manages notes. Every operation is scoped to the owning user;
// another user's note is reported as not found.
type Service struct {
	repo   store.NoteRepo
	logger *zap.Logger
}

// NewService creates a notes Service.
func NewService(repo store.NoteRepo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Create(ctx context.Context, userID string, in Input) (*store.Note, error) {
	content, t, p, err := in.normalize()
	if err != nil {
		return nil, err
	}
	n := &store.Note{ID: uuid.NewString(), UserID: userID, Content: content, Type: string(t), Priority: string(p)}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	s.logger.Debug("note created", zap.String("user_id", userID), zap.String("note_id", n.ID), zap.String("type", n.Type))
	return n, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*store.Note, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("note %s: %w", id, store.ErrNotFound)
	}
	return n, nil
}

// List returns the user's notes newest first, optionally filtered by type.
func (s *Service) List(ctx context.Context, userID, noteType string, limit int) ([]store.Note, error) {
	f := store.NoteFilter{Limit: limit}
	if noteType != "" {
		t, err := ParseType(noteType)
		if err != nil {
			return nil, err
		}
		f.Type = string(t)
	}
	out, err := s.repo.ListByUser(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []store.Note{}
	}
	return out, nil
}

// Count returns how many notes the user has.
func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.repo.CountByUser(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID, id string, in Input) (*store.Note, error) {
	content, t, p, err := in.normalize()
	if err != nil {
		return nil, err
	}
	n, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	n.Content, n.Type, n.Priority = content, string(t), string(p)
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug("note deleted", zap.String("user_id", userID), zap.String("note_id", id))
	return nil
}
