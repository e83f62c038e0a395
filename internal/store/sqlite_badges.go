package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type sqliteBadges struct {
	db *sql.DB
}

func (r *sqliteBadges) Award(ctx context.Context, b *Badge) error {
	if b.AwardedAt.IsZero() {
		b.AwardedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO badges
		(id, user_id, type, rarity, name, reason, topic, source_id, awarded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Type, b.Rarity, b.Name, b.Reason, b.Topic, b.SourceID, toMillis(b.AwardedAt))
	if err != nil {
		return fmt.Errorf("award badge: %w", err)
	}
	return nil
}

func (r *sqliteBadges) ListByUser(ctx context.Context, userID string, opts QueryOpts) ([]Badge, error) {
	query := `SELECT id, user_id, type, rarity, name, reason, topic, source_id, awarded_at
		FROM badges WHERE user_id = ?`
	args := []any{userID}
	if !opts.From.IsZero() {
		query += ` AND awarded_at >= ?`
		args = append(args, toMillis(opts.From))
	}
	if !opts.To.IsZero() {
		query += ` AND awarded_at <= ?`
		args = append(args, toMillis(opts.To))
	}
	query += ` ORDER BY awarded_at DESC, rowid DESC` + limitClause(opts.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	var out []Badge
	for rows.Next() {
		var (
			b         Badge
			awardedAt int64
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.Type, &b.Rarity, &b.Name, &b.Reason,
			&b.Topic, &b.SourceID, &awardedAt); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		b.AwardedAt = fromMillis(awardedAt)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *sqliteBadges) CountByType(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM badges WHERE user_id = ? GROUP BY type`, userID)
	if err != nil {
		return nil, fmt.Errorf("count badges: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			typ string
			n   int
		)
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan badge count: %w", err)
		}
		counts[typ] = n
	}
	return counts, rows.Err()
}
