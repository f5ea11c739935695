package types

// FeedItem is one presence record as rendered on the feed. Field names are
// the kiosk client's contract; keep them short, the page polls constantly.
type FeedItem struct {
	UserID int64  `json:"uid"`
	UUID   string `json:"uuid"`
	Name   string `json:"name"`
	Door   string `json:"door"`
	First  int64  `json:"first"`
	Last   int64  `json:"last"`
	Count  int64  `json:"count"`
	Photo  string `json:"photo,omitempty"`
}

type FeedResponse struct {
	Items []FeedItem `json:"items"`
	Now   int64      `json:"now"`
}
