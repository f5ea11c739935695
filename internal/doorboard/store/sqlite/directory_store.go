package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DirectoryStore reads the identity tables seeded/synced from the external
// identity system. Read-only from doorboard's point of view.
type DirectoryStore struct {
	db *sql.DB
}

func NewDirectoryStore(conn *sql.DB) *DirectoryStore {
	return &DirectoryStore{db: conn}
}

func (s *DirectoryStore) RolesGranting(ctx context.Context, group string) ([]string, error) {
	group = strings.TrimSpace(group)
	if group == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT role_id FROM role_grants WHERE group_name = ?;`, group)
	if err != nil {
		return nil, fmt.Errorf("RolesGranting %q: %w", group, err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("RolesGranting scan: %w", err)
		}
		roles = append(roles, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("RolesGranting rows: %w", err)
	}
	return roles, nil
}

func (s *DirectoryStore) ActiveUserIDsWithRoles(ctx context.Context, roles []string) ([]int64, error) {
	if len(roles) == 0 {
		return nil, nil
	}

	ph := make([]string, len(roles))
	args := make([]any, len(roles))
	for i, r := range roles {
		ph[i] = "?"
		args[i] = r
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT DISTINCT u.user_id
FROM directory_users u
JOIN user_roles ur ON ur.user_id = u.user_id
WHERE u.active = 1 AND ur.role_id IN (`+strings.Join(ph, ",")+`);`, args...)
	if err != nil {
		return nil, fmt.Errorf("ActiveUserIDsWithRoles: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ActiveUserIDsWithRoles scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ActiveUserIDsWithRoles rows: %w", err)
	}
	return ids, nil
}
