package store

import (
	"context"

	"github.com/kwhalen/doorboard/internal/doorboard/types"
)

// UserIDSet is a candidate set of user ids for feed filtering. A nil set in
// FeedQuery means "no filter"; a non-nil empty set matches nothing. The two
// must never be conflated — an unknown authorization group yields an empty
// set, not an unfiltered feed.
type UserIDSet map[int64]struct{}

func NewUserIDSet(ids ...int64) UserIDSet {
	s := make(UserIDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// UpdateFn computes the new presence row from the existing one (nil when the
// user has no row yet). Returning write=false leaves the row untouched.
type UpdateFn func(existing *types.PresenceRecord) (rec types.PresenceRecord, write bool)

// FeedQuery selects presence rows for one feed page. Limit must already be
// clamped by the caller; the store applies it verbatim.
type FeedQuery struct {
	After      int64     // exclusive lower bound on last_seen; 0 = from the beginning
	Limit      int       // page size, >= 1
	Door       string    // exact door filter when non-empty
	Visible    UserIDSet // nil = unfiltered
	Descending bool
}

// PresenceStore is the one shared mutable resource in doorboard: the
// one-row-per-user roster of who was last seen where.
type PresenceStore interface {
	// Get returns the user's row, or nil if the user has never been seen.
	Get(ctx context.Context, userID int64) (*types.PresenceRecord, error)

	// Update runs fn against the user's current row and writes the result
	// back, atomically with respect to other Updates for the same user.
	// Updates for different users must not block each other beyond what the
	// underlying storage requires.
	Update(ctx context.Context, userID int64, fn UpdateFn) error

	// Feed returns rows with last_seen strictly after q.After, filtered and
	// ordered per q, truncated to q.Limit. Ties on last_seen are broken by
	// user_id so repeated polls page deterministically.
	Feed(ctx context.Context, q FeedQuery) ([]types.PresenceRecord, error)

	// PruneIdleBefore deletes rows whose last_seen is before cutoff.
	// Returns the number of rows deleted.
	PruneIdleBefore(ctx context.Context, cutoff int64) (int64, error)
}
