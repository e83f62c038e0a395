package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type sqliteQuizzes struct {
	db *sql.DB
}

const quizColumns = `id, user_id, topic, status, difficulty, target_count, questions, answers,
	adjustments, correct_count, total_answered, correct_streak, incorrect_streak, best_streak,
	xp_earned, demo, created_at, updated_at, completed_at`

func (r *sqliteQuizzes) Create(ctx context.Context, q *QuizSession) error {
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now
	if q.Status == "" {
		q.Status = StatusActive
	}
	cols, err := encodeQuizJSON(q)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO quiz_sessions (`+quizColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.UserID, q.Topic, q.Status, q.Difficulty, q.TargetCount,
		cols[0], cols[1], cols[2],
		q.CorrectCount, q.TotalAnswered, q.CorrectStreak, q.IncorrectStreak, q.BestStreak,
		q.XPEarned, boolInt(q.Demo), toMillis(q.CreatedAt), toMillis(q.UpdatedAt),
		toNullMillis(q.CompletedAt))
	if err != nil {
		return fmt.Errorf("create quiz: %w", err)
	}
	return nil
}

func (r *sqliteQuizzes) Get(ctx context.Context, id string) (*QuizSession, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+quizColumns+` FROM quiz_sessions WHERE id = ?`, id)
	return scanQuiz(row)
}

func (r *sqliteQuizzes) Update(ctx context.Context, q *QuizSession) error {
	q.UpdatedAt = time.Now().UTC()
	cols, err := encodeQuizJSON(q)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `UPDATE quiz_sessions SET status = ?, difficulty = ?,
		questions = ?, answers = ?, adjustments = ?, correct_count = ?, total_answered = ?,
		correct_streak = ?, incorrect_streak = ?, best_streak = ?, xp_earned = ?, demo = ?,
		updated_at = ?, completed_at = ?
		WHERE id = ?`,
		q.Status, q.Difficulty, cols[0], cols[1], cols[2],
		q.CorrectCount, q.TotalAnswered, q.CorrectStreak, q.IncorrectStreak, q.BestStreak,
		q.XPEarned, boolInt(q.Demo), toMillis(q.UpdatedAt), toNullMillis(q.CompletedAt), q.ID)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	return expectOneRow(res, "quiz", q.ID)
}

func (r *sqliteQuizzes) ListByUser(ctx context.Context, userID string, opts QueryOpts) ([]QuizSession, error) {
	query := `SELECT ` + quizColumns + ` FROM quiz_sessions WHERE user_id = ?`
	args := []any{userID}
	if !opts.From.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, toMillis(opts.From))
	}
	if !opts.To.IsZero() {
		query += ` AND created_at <= ?`
		args = append(args, toMillis(opts.To))
	}
	query += ` ORDER BY created_at DESC` + limitClause(opts.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []QuizSession
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func encodeQuizJSON(q *QuizSession) ([3]string, error) {
	var cols [3]string
	for i, v := range []any{nonNil(q.Questions), nonNil(q.Answers), nonNil(q.Adjustments)} {
		s, err := toJSON(v)
		if err != nil {
			return cols, err
		}
		cols[i] = s
	}
	return cols, nil
}

// nonNil keeps nil slices from being encoded as JSON null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func scanQuiz(row rowScanner) (*QuizSession, error) {
	var (
		q                               QuizSession
		questions, answers, adjustments string
		demo                            int
		createdAt, updatedAt            int64
		completedAt                     sql.NullInt64
	)
	err := row.Scan(&q.ID, &q.UserID, &q.Topic, &q.Status, &q.Difficulty, &q.TargetCount,
		&questions, &answers, &adjustments, &q.CorrectCount, &q.TotalAnswered,
		&q.CorrectStreak, &q.IncorrectStreak, &q.BestStreak, &q.XPEarned, &demo,
		&createdAt, &updatedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan quiz: %w", err)
	}
	if err := fromJSON(questions, &q.Questions); err != nil {
		return nil, err
	}
	if err := fromJSON(answers, &q.Answers); err != nil {
		return nil, err
	}
	if err := fromJSON(adjustments, &q.Adjustments); err != nil {
		return nil, err
	}
	q.Demo = demo != 0
	q.CreatedAt = fromMillis(createdAt)
	q.UpdatedAt = fromMillis(updatedAt)
	q.CompletedAt = fromNullMillis(completedAt)
	return &q, nil
}
