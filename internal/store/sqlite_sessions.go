package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type sqliteSessions struct {
	db *sql.DB
}

const sessionColumns = `id, user_id, topic, mood, minutes, plan, step, status, xp_earned, demo,
	created_at, updated_at, completed_at`

func (r *sqliteSessions) Create(ctx context.Context, s *LearningSession) error {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = StatusActive
	}
	plan, err := toJSON(s.Plan)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO learning_sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Topic, s.Mood, s.Minutes, plan, s.Step, s.Status, s.XPEarned,
		boolInt(s.Demo), toMillis(s.CreatedAt), toMillis(s.UpdatedAt), toNullMillis(s.CompletedAt))
	if err != nil {
		return fmt.Errorf("create learning session: %w", err)
	}
	return nil
}

func (r *sqliteSessions) Get(ctx context.Context, id string) (*LearningSession, error) {
	var (
		s                    LearningSession
		plan                 string
		demo                 int
		createdAt, updatedAt int64
		completedAt          sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM learning_sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.UserID, &s.Topic, &s.Mood, &s.Minutes, &plan, &s.Step, &s.Status,
			&s.XPEarned, &demo, &createdAt, &updatedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get learning session: %w", err)
	}
	if err := fromJSON(plan, &s.Plan); err != nil {
		return nil, err
	}
	s.Demo = demo != 0
	s.CreatedAt = fromMillis(createdAt)
	s.UpdatedAt = fromMillis(updatedAt)
	s.CompletedAt = fromNullMillis(completedAt)
	return &s, nil
}

func (r *sqliteSessions) Update(ctx context.Context, s *LearningSession) error {
	s.UpdatedAt = time.Now().UTC()
	plan, err := toJSON(s.Plan)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE learning_sessions SET plan = ?, step = ?, status = ?,
		xp_earned = ?, demo = ?, updated_at = ?, completed_at = ? WHERE id = ?`,
		plan, s.Step, s.Status, s.XPEarned, boolInt(s.Demo), toMillis(s.UpdatedAt),
		toNullMillis(s.CompletedAt), s.ID)
	if err != nil {
		return fmt.Errorf("update learning session: %w", err)
	}
	return expectOneRow(res, "session", s.ID)
}
