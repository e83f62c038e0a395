package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type sqliteNotes struct {
	db *sql.DB
}

const noteColumns = `id, user_id, content, type, priority, created_at, updated_at`

func (r *sqliteNotes) Create(ctx context.Context, n *Note) error {
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Content, n.Type, n.Priority, toMillis(n.CreatedAt), toMillis(n.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

func (r *sqliteNotes) Get(ctx context.Context, id string) (*Note, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	return scanNote(row)
}

func (r *sqliteNotes) ListByUser(ctx context.Context, userID string, f NoteFilter) ([]Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = ?`
	args := []any{userID}
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, f.Type)
	}
	query += ` ORDER BY created_at DESC` + limitClause(f.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func (r *sqliteNotes) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return n, nil
}

func (r *sqliteNotes) Update(ctx context.Context, n *Note) error {
	n.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `UPDATE notes SET content = ?, type = ?, priority = ?, updated_at = ?
		WHERE id = ?`, n.Content, n.Type, n.Priority, toMillis(n.UpdatedAt), n.ID)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return expectOneRow(res, "note", n.ID)
}

func (r *sqliteNotes) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return expectOneRow(res, "note", id)
}

func scanNote(row rowScanner) (*Note, error) {
	var (
		n                    Note
		createdAt, updatedAt int64
	)
	err := row.Scan(&n.ID, &n.UserID, &n.Content, &n.Type, &n.Priority, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan note: %w", err)
	}
	n.CreatedAt = fromMillis(createdAt)
	n.UpdatedAt = fromMillis(updatedAt)
	return &n, nil
}
