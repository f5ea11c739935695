package store

import "context"

// DirectoryStore exposes the slice of the identity system the authorization
// filter needs. Visibility groups are granted via roles: a user is visible
// under a group when they are active and hold any role granting it.
type DirectoryStore interface {
	// RolesGranting returns the role ids that grant the given group.
	// Unknown groups return an empty slice, not an error.
	RolesGranting(ctx context.Context, group string) ([]string, error)

	// ActiveUserIDsWithRoles returns the ids of active users holding any of
	// the given roles. An empty role list returns an empty slice.
	ActiveUserIDsWithRoles(ctx context.Context, roles []string) ([]int64, error)
}
