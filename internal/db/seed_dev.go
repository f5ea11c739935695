package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SeedDev populates the identity directory with a few users, roles and
// group grants so the kiosk has something to show in dev. Idempotent.
func SeedDev(ctx context.Context, conn *sql.DB) error {
	now := time.Now().UTC().Unix()

	users := []struct {
		id     int64
		name   string
		active bool
		roles  []string
	}{
		{1, "Ada Lovelace", true, []string{"member"}},
		{2, "Grace Hopper", true, []string{"member", "steward"}},
		{3, "Alan Turing", true, []string{"steward"}},
		{4, "Dorothy Vaughan", false, []string{"member"}}, // inactive: invisible under every group
	}

	for _, u := range users {
		active := 0
		if u.active {
			active = 1
		}
		if _, err := conn.ExecContext(ctx, `
INSERT INTO directory_users(user_id, user_uuid, display_name, active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
  display_name = excluded.display_name,
  active = excluded.active,
  updated_at = excluded.updated_at;
`, u.id, uuid.NewString(), u.name, active, now, now); err != nil {
			return fmt.Errorf("seed user %d: %w", u.id, err)
		}

		for _, role := range u.roles {
			if _, err := conn.ExecContext(ctx, `
INSERT OR IGNORE INTO user_roles(user_id, role_id) VALUES (?, ?);
`, u.id, role); err != nil {
				return fmt.Errorf("seed role %s for user %d: %w", role, u.id, err)
			}
		}
	}

	grants := []struct{ role, group string }{
		{"member", "door"},
		{"steward", "door"},
		{"steward", "workshop"},
	}
	for _, g := range grants {
		if _, err := conn.ExecContext(ctx, `
INSERT OR IGNORE INTO role_grants(role_id, group_name) VALUES (?, ?);
`, g.role, g.group); err != nil {
			return fmt.Errorf("seed grant %s->%s: %w", g.role, g.group, err)
		}
	}

	return nil
}
