package types

// ScanRequest is a single authorized badge scan, as delivered by the
// external access-control source.
type ScanRequest struct {
	UserID      int64  `json:"user_id"`
	UserUUID    string `json:"user_uuid,omitempty"`
	DisplayName string `json:"name,omitempty"`
	Door        string `json:"door"`
	Timestamp   int64  `json:"ts,omitempty"` // unix seconds; 0 = server now
}

type ScanResponse struct {
	OK         bool   `json:"ok"`
	Outcome    string `json:"outcome"` // "created" | "merged" | "reset" | "stale"
	UserID     int64  `json:"user_id"`
	ServerTime string `json:"server_time"`
}
