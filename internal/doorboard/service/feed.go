package service

import (
	"context"
	"time"

	"github.com/kwhalen/doorboard/internal/doorboard/store"
	"github.com/kwhalen/doorboard/internal/doorboard/types"
)

// PhotoResolver is the narrow capability the feed uses to attach photos.
// Implementations return ok=false when no photo is available; they never
// fail the feed.
type PhotoResolver interface {
	ResolvePhoto(ctx context.Context, userID int64, userUUID string) (url string, ok bool)
}

// FeedParams selects one feed page. A nil Visible set means unfiltered;
// an empty set yields an empty page.
type FeedParams struct {
	After      int64          // exclusive cursor: rows with last_seen > After
	Limit      int            // 0 = service default; otherwise clamped to [1, max]
	Door       string         // exact door filter when non-empty
	Visible    store.UserIDSet
	Descending bool
}

type FeedService struct {
	store        store.PresenceStore
	photos       PhotoResolver
	defaultLimit int
	maxLimit     int
}

func NewFeedService(st store.PresenceStore, photos PhotoResolver, defaultLimit, maxLimit int) *FeedService {
	if maxLimit < 1 {
		maxLimit = 200
	}
	if defaultLimit < 1 || defaultLimit > maxLimit {
		defaultLimit = min(50, maxLimit)
	}
	return &FeedService{store: st, photos: photos, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// DefaultLimit is the page size used when the client does not ask for one.
func (s *FeedService) DefaultLimit() int { return s.defaultLimit }

// Query returns one feed page plus the server's current time. Read-only;
// a concurrent upsert may or may not be visible, but every returned row is
// a complete record.
func (s *FeedService) Query(ctx context.Context, p FeedParams) (types.FeedResponse, error) {
	limit := p.Limit
	switch {
	case limit == 0:
		limit = s.defaultLimit
	case limit < 1:
		limit = 1
	case limit > s.maxLimit:
		limit = s.maxLimit
	}

	recs, err := s.store.Feed(ctx, store.FeedQuery{
		After:      p.After,
		Limit:      limit,
		Door:       p.Door,
		Visible:    p.Visible,
		Descending: p.Descending,
	})
	if err != nil {
		return types.FeedResponse{}, err
	}

	items := make([]types.FeedItem, 0, len(recs))
	for _, rec := range recs {
		item := types.FeedItem{
			UserID: rec.UserID,
			UUID:   rec.UserUUID,
			Name:   rec.DisplayName,
			Door:   rec.Door,
			First:  rec.FirstSeen,
			Last:   rec.LastSeen,
			Count:  rec.ScanCount,
		}
		if s.photos != nil {
			if url, ok := s.photos.ResolvePhoto(ctx, rec.UserID, rec.UserUUID); ok {
				item.Photo = url
			}
		}
		items = append(items, item)
	}

	return types.FeedResponse{
		Items: items,
		Now:   time.Now().UTC().Unix(),
	}, nil
}
