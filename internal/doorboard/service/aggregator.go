package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kwhalen/doorboard/internal/doorboard/store"
	"github.com/kwhalen/doorboard/internal/doorboard/types"
)

var (
	ErrInvalidUserID    = errors.New("user_id must be positive")
	ErrInvalidDoor      = errors.New("door is required")
	ErrInvalidTimestamp = errors.New("ts must not be negative")
)

// Outcome describes what a scan did to the user's presence row.
type Outcome string

const (
	OutcomeCreated Outcome = "created" // first ever sighting of the user
	OutcomeMerged  Outcome = "merged"  // folded into the current visit window
	OutcomeReset   Outcome = "reset"   // started a new visit window
	OutcomeStale   Outcome = "stale"   // older than last_seen; dropped
)

// DefaultDebounce is the visit window within which repeated scans of the
// same user count as one visit.
const DefaultDebounce = 300 * time.Second

// Aggregator folds raw scan events into the presence roster.
type Aggregator struct {
	store    store.PresenceStore
	debounce int64 // seconds
}

func NewAggregator(st store.PresenceStore, debounce time.Duration) *Aggregator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Aggregator{store: st, debounce: int64(debounce / time.Second)}
}

// RecordScan applies one scan event to the roster. Safe to call concurrently
// from any number of event sources; the store serializes the read-modify-write
// per user.
//
// Events whose timestamp is older than the row's last_seen are dropped
// (OutcomeStale): last_seen stays monotonic and a late event never rewinds or
// spuriously resets a window.
func (a *Aggregator) RecordScan(ctx context.Context, req types.ScanRequest) (Outcome, error) {
	if req.UserID <= 0 {
		return "", ErrInvalidUserID
	}
	door := strings.TrimSpace(req.Door)
	if door == "" {
		return "", ErrInvalidDoor
	}
	if req.Timestamp < 0 {
		return "", ErrInvalidTimestamp
	}

	ts := req.Timestamp
	if ts == 0 {
		ts = time.Now().UTC().Unix()
	}

	var outcome Outcome
	err := a.store.Update(ctx, req.UserID, func(existing *types.PresenceRecord) (types.PresenceRecord, bool) {
		if existing == nil {
			outcome = OutcomeCreated
			return types.PresenceRecord{
				UserID:      req.UserID,
				UserUUID:    req.UserUUID,
				DisplayName: req.DisplayName,
				Door:        door,
				FirstSeen:   ts,
				LastSeen:    ts,
				ScanCount:   1,
			}, true
		}

		elapsed := ts - existing.LastSeen
		if elapsed < 0 {
			outcome = OutcomeStale
			return types.PresenceRecord{}, false
		}

		next := *existing
		next.DisplayName = req.DisplayName // denormalized copy, refreshed every event
		if next.UserUUID == "" {
			next.UserUUID = req.UserUUID
		}
		next.LastSeen = ts

		if elapsed <= a.debounce {
			outcome = OutcomeMerged
			next.ScanCount++
			if next.Door == "" {
				next.Door = door
			}
		} else {
			outcome = OutcomeReset
			next.ScanCount = 1
			next.Door = door
			// FirstSeen deliberately untouched: it records the first ever
			// sighting, not the start of the current window.
		}

		return next, true
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}
