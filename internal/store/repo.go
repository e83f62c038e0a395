package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist or is not
	// visible to the requesting user.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a unique constraint is violated.
	ErrConflict = errors.New("conflict")
)

// QueryOpts configures list queries with filtering and pagination.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	From  time.Time // created at >= From
	To    time.Time // created at <= To
}

// NoteFilter narrows a note listing.
type NoteFilter struct {
	Type  string // empty = any type
	Limit int
}

// Store is the persistence boundary. Each backend exposes the same set
// of repositories.
type Store interface {
	Users() UserRepo
	Quizzes() QuizRepo
	Notes() NoteRepo
	Chats() ChatRepo
	Sessions() SessionRepo
	Badges() BadgeRepo
	Events() EventRepo
	Ping(ctx context.Context) error
	Close() error
}

// UserRepo manages learner profiles.
type UserRepo interface {
	// Create inserts a new user. Returns ErrConflict if the email is taken.
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Update overwrites every mutable column of u.
	Update(ctx context.Context, u *User) error
}

// QuizRepo manages quiz sessions.
type QuizRepo interface {
	Create(ctx context.Context, q *QuizSession) error
	Get(ctx context.Context, id string) (*QuizSession, error)
	Update(ctx context.Context, q *QuizSession) error
	// ListByUser returns the user's quizzes, newest first.
	ListByUser(ctx context.Context, userID string, opts QueryOpts) ([]QuizSession, error)
}

// NoteRepo manages notes. Notes are the only records that can be deleted.
type NoteRepo interface {
	Create(ctx context.Context, n *Note) error
	Get(ctx context.Context, id string) (*Note, error)
	ListByUser(ctx context.Context, userID string, f NoteFilter) ([]Note, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Update(ctx context.Context, n *Note) error
	Delete(ctx context.Context, id string) error
}

// ChatRepo stores tutor chat history.
type ChatRepo interface {
	Append(ctx context.Context, m *ChatMessage) error
	// Recent returns the latest limit messages in chronological order.
	Recent(ctx context.Context, userID string, limit int) ([]ChatMessage, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// SessionRepo manages learning sessions.
type SessionRepo interface {
	Create(ctx context.Context, s *LearningSession) error
	Get(ctx context.Context, id string) (*LearningSession, error)
	Update(ctx context.Context, s *LearningSession) error
}

// BadgeRepo records awarded badges.
type BadgeRepo interface {
	Award(ctx context.Context, b *Badge) error
	// ListByUser returns badges newest first.
	ListByUser(ctx context.Context, userID string, opts QueryOpts) ([]Badge, error)
	CountByType(ctx context.Context, userID string) (map[string]int, error)
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)
	// GetLLMEvent returns the event with the given ID, or nil if absent.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
