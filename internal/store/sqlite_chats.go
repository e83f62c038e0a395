package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"
)

type sqliteChats struct {
	db *sql.DB
}

func (r *sqliteChats) Append(ctx context.Context, m *ChatMessage) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO chat_messages (id, user_id, role, content, topic, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.Role, m.Content, m.Topic, toMillis(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("append chat message: %w", err)
	}
	return nil
}

func (r *sqliteChats) Recent(ctx context.Context, userID string, limit int) ([]ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, role, content, topic, created_at
		FROM chat_messages WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`+limitClause(limit), userID)
	if err != nil {
		return nil, fmt.Errorf("recent chat messages: %w", err)
	}
	defer rows.Close()

	var out []ChatMessage
	for rows.Next() {
		var (
			m         ChatMessage
			createdAt int64
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.Topic, &createdAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		m.CreatedAt = fromMillis(createdAt)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

func (r *sqliteChats) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete chat messages: %w", err)
	}
	return nil
}
