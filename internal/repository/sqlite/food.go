package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/calorie-log/internal/model"
	"github.com/sakif/calorie-log/internal/repository"
)

var _ repository.FoodRepository = (*DB)(nil)

// likeEscaper escapes LIKE wildcards so a search for "50%" matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Create inserts a new food entry. It assigns the ID, and CreatedAt when the
// caller left it zero. Timestamps are stored in UTC so range scans compare
// like with like.
func (db *DB) Create(ctx context.Context, entry *model.FoodEntry) error {
	entry.ID = xid.New().String()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO foods (id, user_id, food_name, calories, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ID,
		entry.UserID,
		entry.FoodName,
		entry.Calories,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating food entry: %w", err)
	}

	return nil
}

// ListBetween returns the user's entries with from <= created_at < to.
func (db *DB) ListBetween(ctx context.Context, userID int64, from, to time.Time) ([]model.FoodEntry, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, food_name, calories, created_at
		 FROM foods
		 WHERE user_id = ? AND created_at >= ? AND created_at < ?
		 ORDER BY created_at DESC`,
		userID,
		from.UTC(),
		to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing food entries: %w", err)
	}
	return scanEntries(rows)
}

// Search returns the user's entries whose name contains q. SQLite's LIKE is
// case-insensitive for ASCII.
func (db *DB) Search(ctx context.Context, userID int64, q string) ([]model.FoodEntry, error) {
	pattern := "%" + likeEscaper.Replace(q) + "%"

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, food_name, calories, created_at
		 FROM foods
		 WHERE user_id = ? AND food_name LIKE ? ESCAPE '\'
		 ORDER BY created_at DESC`,
		userID,
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: searching food entries: %w", err)
	}
	return scanEntries(rows)
}

// scanEntries drains rows into a slice and closes them.
func scanEntries(rows *sql.Rows) ([]model.FoodEntry, error) {
	defer rows.Close()

	entries := make([]model.FoodEntry, 0)
	for rows.Next() {
		var e model.FoodEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.FoodName, &e.Calories, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning food entry row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating food entries: %w", err)
	}

	return entries, nil
}
