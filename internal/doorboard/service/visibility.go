package service

import (
	"context"
	"strings"

	"github.com/kwhalen/doorboard/internal/doorboard/store"
)

// GroupAll is the sentinel group meaning "no visibility filtering".
const GroupAll = "_all"

// VisibilityResolver maps an authorization group to the set of user ids
// allowed to appear under it. Role membership can change between polls, so
// resolution is recomputed per request and never cached.
type VisibilityResolver struct {
	dir store.DirectoryStore
}

func NewVisibilityResolver(dir store.DirectoryStore) *VisibilityResolver {
	return &VisibilityResolver{dir: dir}
}

// ResolveVisibleUsers returns nil for the unfiltered sentinel (GroupAll or
// an empty group), and otherwise a materialized — possibly empty — set of
// active user ids holding any role that grants the group. An unknown group
// is not an error; it resolves to the empty set, which hides everything.
func (r *VisibilityResolver) ResolveVisibleUsers(ctx context.Context, group string) (store.UserIDSet, error) {
	group = strings.TrimSpace(group)
	if group == "" || group == GroupAll {
		return nil, nil
	}

	roles, err := r.dir.RolesGranting(ctx, group)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return store.UserIDSet{}, nil
	}

	ids, err := r.dir.ActiveUserIDsWithRoles(ctx, roles)
	if err != nil {
		return nil, err
	}
	return store.NewUserIDSet(ids...), nil
}
