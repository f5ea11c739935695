package types

// PresenceRecord is the single live "recently seen" row for a user.
// Timestamps are unix seconds, matching the feed's wire contract.
type PresenceRecord struct {
	UserID      int64
	UserUUID    string
	DisplayName string
	Door        string

	// FirstSeen is the user's first ever observation. Window resets do not
	// touch it; it changes only when the record is created.
	FirstSeen int64

	// LastSeen is monotonically non-decreasing across upserts.
	LastSeen int64

	// ScanCount is the number of scans folded into the current visit window.
	ScanCount int64
}
