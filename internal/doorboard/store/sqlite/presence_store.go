package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	dbpkg "github.com/kwhalen/doorboard/internal/db"
	"github.com/kwhalen/doorboard/internal/doorboard/store"
	"github.com/kwhalen/doorboard/internal/doorboard/types"
)

const presenceColumns = "user_id, user_uuid, display_name, door, first_seen, last_seen, scan_count"

type PresenceStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewPresenceStore(conn *sql.DB, writer *dbpkg.Worker) *PresenceStore {
	return &PresenceStore{db: conn, writer: writer}
}

func (s *PresenceStore) Get(ctx context.Context, userID int64) (*types.PresenceRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+presenceColumns+` FROM presence WHERE user_id = ?;`, userID)

	rec, err := scanPresence(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get presence %d: %w", userID, err)
	}
	return &rec, nil
}

// Update runs fn inside a single writer transaction, so the select and the
// write-back cannot interleave with another Update for the same user.
func (s *PresenceStore) Update(ctx context.Context, userID int64, fn store.UpdateFn) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+presenceColumns+` FROM presence WHERE user_id = ?;`, userID)

		var existing *types.PresenceRecord
		rec, err := scanPresence(row)
		switch {
		case err == sql.ErrNoRows:
			existing = nil
		case err != nil:
			return fmt.Errorf("Update select presence %d: %w", userID, err)
		default:
			existing = &rec
		}

		next, write := fn(existing)
		if !write {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO presence(user_id, user_uuid, display_name, door, first_seen, last_seen, scan_count)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
  user_uuid    = excluded.user_uuid,
  display_name = excluded.display_name,
  door         = excluded.door,
  last_seen    = excluded.last_seen,
  scan_count   = excluded.scan_count;
`,
			next.UserID, next.UserUUID, next.DisplayName, next.Door,
			next.FirstSeen, next.LastSeen, next.ScanCount,
		); err != nil {
			return fmt.Errorf("Update write presence %d: %w", userID, err)
		}

		return nil
	})
}

func (s *PresenceStore) Feed(ctx context.Context, q store.FeedQuery) ([]types.PresenceRecord, error) {
	// A materialized-but-empty visible set matches nothing; don't even query.
	if q.Visible != nil && len(q.Visible) == 0 {
		return nil, nil
	}

	var (
		where []string
		args  []any
	)
	if q.After > 0 {
		where = append(where, "last_seen > ?")
		args = append(args, q.After)
	}
	if q.Door != "" {
		where = append(where, "door = ?")
		args = append(args, q.Door)
	}
	if q.Visible != nil {
		ph := make([]string, 0, len(q.Visible))
		for id := range q.Visible {
			ph = append(ph, "?")
			args = append(args, id)
		}
		where = append(where, "user_id IN ("+strings.Join(ph, ",")+")")
	}

	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}

	query := `SELECT ` + presenceColumns + ` FROM presence`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY last_seen %s, user_id %s LIMIT ?", dir, dir)
	args = append(args, q.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Feed query: %w", err)
	}
	defer rows.Close()

	var out []types.PresenceRecord
	for rows.Next() {
		rec, err := scanPresence(rows)
		if err != nil {
			return nil, fmt.Errorf("Feed scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Feed rows: %w", err)
	}
	return out, nil
}

func (s *PresenceStore) PruneIdleBefore(ctx context.Context, cutoff int64) (int64, error) {
	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM presence WHERE last_seen < ?;`, cutoff)
		if err != nil {
			return fmt.Errorf("PruneIdleBefore: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPresence(r rowScanner) (types.PresenceRecord, error) {
	var rec types.PresenceRecord
	err := r.Scan(
		&rec.UserID, &rec.UserUUID, &rec.DisplayName, &rec.Door,
		&rec.FirstSeen, &rec.LastSeen, &rec.ScanCount,
	)
	return rec, err
}
