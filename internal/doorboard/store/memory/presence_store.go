package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/kwhalen/doorboard/internal/doorboard/store"
	"github.com/kwhalen/doorboard/internal/doorboard/types"
)

// PresenceStore is an in-memory roster for tests and dev.
type PresenceStore struct {
	mu   sync.Mutex
	data map[int64]types.PresenceRecord
}

func NewPresenceStore() *PresenceStore {
	return &PresenceStore{data: make(map[int64]types.PresenceRecord)}
}

func (s *PresenceStore) Get(_ context.Context, userID int64) (*types.PresenceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[userID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *PresenceStore) Update(_ context.Context, userID int64, fn store.UpdateFn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing *types.PresenceRecord
	if rec, ok := s.data[userID]; ok {
		existing = &rec
	}

	next, write := fn(existing)
	if !write {
		return nil
	}
	s.data[userID] = next
	return nil
}

func (s *PresenceStore) Feed(_ context.Context, q store.FeedQuery) ([]types.PresenceRecord, error) {
	if q.Visible != nil && len(q.Visible) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	var out []types.PresenceRecord
	for _, rec := range s.data {
		if q.After > 0 && rec.LastSeen <= q.After {
			continue
		}
		if q.Door != "" && rec.Door != q.Door {
			continue
		}
		if q.Visible != nil {
			if _, ok := q.Visible[rec.UserID]; !ok {
				continue
			}
		}
		out = append(out, rec)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.LastSeen != b.LastSeen {
			if q.Descending {
				return a.LastSeen > b.LastSeen
			}
			return a.LastSeen < b.LastSeen
		}
		if q.Descending {
			return a.UserID > b.UserID
		}
		return a.UserID < b.UserID
	})

	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *PresenceStore) PruneIdleBefore(_ context.Context, cutoff int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, rec := range s.data {
		if rec.LastSeen < cutoff {
			delete(s.data, id)
			deleted++
		}
	}
	return deleted, nil
}
