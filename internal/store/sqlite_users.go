package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type sqliteUsers struct {
	db *sql.DB
}

const userColumns = `id, name, email, password_hash, grade, xp, level, current_streak,
	longest_streak, last_active, progress, created_at, updated_at`

func (r *sqliteUsers) Create(ctx context.Context, u *User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Level == 0 {
		u.Level = 1
	}
	if u.Progress == nil {
		u.Progress = map[string]TopicProgress{}
	}
	progress, err := toJSON(u.Progress)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Grade, u.XP, u.Level, u.CurrentStreak,
		u.LongestStreak, u.LastActive, progress, toMillis(u.CreatedAt), toMillis(u.UpdatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("create user %s: %w", u.Email, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *sqliteUsers) Get(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *sqliteUsers) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *sqliteUsers) Update(ctx context.Context, u *User) error {
	u.UpdatedAt = time.Now().UTC()
	progress, err := toJSON(u.Progress)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `UPDATE users SET name = ?, grade = ?, xp = ?, level = ?,
		current_streak = ?, longest_streak = ?, last_active = ?, progress = ?, updated_at = ?
		WHERE id = ?`,
		u.Name, u.Grade, u.XP, u.Level, u.CurrentStreak, u.LongestStreak, u.LastActive,
		progress, toMillis(u.UpdatedAt), u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return expectOneRow(res, "user", u.ID)
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u                    User
		progress             string
		createdAt, updatedAt int64
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Grade, &u.XP, &u.Level,
		&u.CurrentStreak, &u.LongestStreak, &u.LastActive, &progress, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Progress = map[string]TopicProgress{}
	if err := fromJSON(progress, &u.Progress); err != nil {
		return nil, err
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return &u, nil
}

// expectOneRow maps a zero-row update or delete to ErrNotFound.
func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
