package service_test

import (
	"context"
	"testing"

	"github.com/kwhalen/doorboard/internal/doorboard/service"
	"github.com/kwhalen/doorboard/internal/doorboard/store"
	"github.com/kwhalen/doorboard/internal/doorboard/store/memory"
	"github.com/kwhalen/doorboard/internal/doorboard/types"
)

// fakePhotos resolves photos for an explicit set of users.
type fakePhotos struct {
	urls map[int64]string
}

func (f *fakePhotos) ResolvePhoto(_ context.Context, userID int64, _ string) (string, bool) {
	url, ok := f.urls[userID]
	return url, ok
}

// seedPresence writes a row directly, bypassing the aggregator.
func seedPresence(t *testing.T, st *memory.PresenceStore, rec types.PresenceRecord) {
	t.Helper()
	err := st.Update(context.Background(), rec.UserID, func(_ *types.PresenceRecord) (types.PresenceRecord, bool) {
		return rec, true
	})
	if err != nil {
		t.Fatalf("seed presence %d: %v", rec.UserID, err)
	}
}

func row(uid, last int64, door string) types.PresenceRecord {
	return types.PresenceRecord{
		UserID: uid, UserUUID: "", DisplayName: "U",
		Door: door, FirstSeen: last, LastSeen: last, ScanCount: 1,
	}
}

func newFeed(st *memory.PresenceStore, photos service.PhotoResolver) *service.FeedService {
	return service.NewFeedService(st, photos, 50, 200)
}

func TestQuery_CursorIsStrict(t *testing.T) {
	st := memory.NewPresenceStore()
	const ts = int64(1_700_000_000)
	seedPresence(t, st, row(1, ts, "front"))
	seedPresence(t, st, row(2, ts+1, "front"))

	resp, err := newFeed(st, nil).Query(context.Background(), service.FeedParams{After: ts})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(resp.Items))
	}
	if resp.Items[0].UserID != 2 {
		t.Errorf("expected only user 2 (last=%d), got uid=%d", ts+1, resp.Items[0].UserID)
	}
	if resp.Now <= 0 {
		t.Errorf("expected server now to be set, got %d", resp.Now)
	}
}

func TestQuery_LimitClamping(t *testing.T) {
	st := memory.NewPresenceStore()
	base := int64(1_700_000_000)
	for i := int64(1); i <= 250; i++ {
		seedPresence(t, st, row(i, base+i, "front"))
	}
	feed := newFeed(st, nil)
	ctx := context.Background()

	// Over the cap: clamped to 200.
	resp, err := feed.Query(ctx, service.FeedParams{Limit: 500})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(resp.Items) != 200 {
		t.Errorf("expected limit clamped to 200, got %d items", len(resp.Items))
	}

	// Negative: clamped to 1.
	resp, err = feed.Query(ctx, service.FeedParams{Limit: -3})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Errorf("expected limit clamped to 1, got %d items", len(resp.Items))
	}

	// Unset: the default page size.
	resp, err = feed.Query(ctx, service.FeedParams{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(resp.Items) != 50 {
		t.Errorf("expected default limit of 50, got %d items", len(resp.Items))
	}
}

func TestQuery_Ordering(t *testing.T) {
	st := memory.NewPresenceStore()
	base := int64(1_700_000_000)
	seedPresence(t, st, row(1, base+10, "front"))
	seedPresence(t, st, row(2, base+30, "front"))
	seedPresence(t, st, row(3, base+20, "front"))
	feed := newFeed(st, nil)
	ctx := context.Background()

	resp, err := feed.Query(ctx, service.FeedParams{})
	if err != nil {
		t.Fatalf("Query asc: %v", err)
	}
	for i := 1; i < len(resp.Items); i++ {
		if resp.Items[i-1].Last > resp.Items[i].Last {
			t.Errorf("ascending order violated at %d: %d > %d", i, resp.Items[i-1].Last, resp.Items[i].Last)
		}
	}

	resp, err = feed.Query(ctx, service.FeedParams{Descending: true})
	if err != nil {
		t.Fatalf("Query desc: %v", err)
	}
	for i := 1; i < len(resp.Items); i++ {
		if resp.Items[i-1].Last < resp.Items[i].Last {
			t.Errorf("descending order violated at %d: %d < %d", i, resp.Items[i-1].Last, resp.Items[i].Last)
		}
	}
}

func TestQuery_EmptyVisibleSetIsNotNoFilter(t *testing.T) {
	st := memory.NewPresenceStore()
	const ts = int64(1_700_000_000)
	seedPresence(t, st, row(1, ts, "front"))
	seedPresence(t, st, row(2, ts+1, "front"))
	feed := newFeed(st, nil)
	ctx := context.Background()

	// nil set: unfiltered.
	resp, err := feed.Query(ctx, service.FeedParams{Visible: nil})
	if err != nil {
		t.Fatalf("Query nil: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Errorf("expected 2 items unfiltered, got %d", len(resp.Items))
	}

	// Materialized empty set: nothing is visible.
	resp, err = feed.Query(ctx, service.FeedParams{Visible: store.UserIDSet{}})
	if err != nil {
		t.Fatalf("Query empty: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Errorf("expected 0 items for empty visible set, got %d", len(resp.Items))
	}
}

func TestQuery_DoorAndVisibleCompose(t *testing.T) {
	st := memory.NewPresenceStore()
	const ts = int64(1_700_000_000)
	seedPresence(t, st, row(1, ts+1, "front"))
	seedPresence(t, st, row(2, ts+2, "back"))
	seedPresence(t, st, row(3, ts+3, "front"))

	resp, err := newFeed(st, nil).Query(context.Background(), service.FeedParams{
		Door:    "front",
		Visible: store.NewUserIDSet(1, 2),
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	// Only user 1 is both at "front" and in the visible set.
	if len(resp.Items) != 1 || resp.Items[0].UserID != 1 {
		t.Fatalf("expected exactly user 1, got %+v", resp.Items)
	}
}

func TestQuery_IdempotentRead(t *testing.T) {
	st := memory.NewPresenceStore()
	const ts = int64(1_700_000_000)
	seedPresence(t, st, row(1, ts+1, "front"))
	seedPresence(t, st, row(2, ts+2, "back"))
	feed := newFeed(st, nil)
	ctx := context.Background()

	a, err := feed.Query(ctx, service.FeedParams{After: ts})
	if err != nil {
		t.Fatalf("first query: %v", err)
	}
	b, err := feed.Query(ctx, service.FeedParams{After: ts})
	if err != nil {
		t.Fatalf("second query: %v", err)
	}

	if len(a.Items) != len(b.Items) {
		t.Fatalf("result sets differ in size: %d vs %d", len(a.Items), len(b.Items))
	}
	for i := range a.Items {
		if a.Items[i] != b.Items[i] {
			t.Errorf("item %d differs: %+v vs %+v", i, a.Items[i], b.Items[i])
		}
	}
}

func TestQuery_PhotoEnrichment(t *testing.T) {
	st := memory.NewPresenceStore()
	const ts = int64(1_700_000_000)
	seedPresence(t, st, row(1, ts+1, "front"))
	seedPresence(t, st, row(2, ts+2, "front"))

	photos := &fakePhotos{urls: map[int64]string{1: "https://img.example.org/1.jpg"}}
	resp, err := newFeed(st, photos).Query(context.Background(), service.FeedParams{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	for _, it := range resp.Items {
		switch it.UserID {
		case 1:
			if it.Photo != "https://img.example.org/1.jpg" {
				t.Errorf("expected photo for user 1, got %q", it.Photo)
			}
		case 2:
			// No photo resolves to no image, never to an error.
			if it.Photo != "" {
				t.Errorf("expected no photo for user 2, got %q", it.Photo)
			}
		}
	}
}
