package model

// Review is a user's rating of a game. Title and Thumbnail are copied from the
// catalog at submit time so the leaderboard can render without the catalog.
// They are not re-synced if the catalog entry changes later.
type Review struct {
	Comment   string `json:"comment"`
	Score     int    `json:"score"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}

// ReviewInput is the user-authored part of a Review.
type ReviewInput struct {
	Comment string `json:"comment"`
	Score   int    `json:"score"`
}

// ReviewStore maps a game id to its reviews in submission order.
// A present key never maps to an empty list.
type ReviewStore map[string][]Review

// Clone returns a copy that shares no slices with s.
func (s ReviewStore) Clone() ReviewStore {
	out := make(ReviewStore, len(s))
	for k, v := range s {
		out[k] = append([]Review(nil), v...)
	}
	return out
}

// RankedEntry is one leaderboard row. It is derived and never persisted.
type RankedEntry struct {
	GameID       string  `json:"gameId"`
	AverageScore float64 `json:"averageScore"`
	ReviewCount  int     `json:"reviewCount"`
	Title        string  `json:"title"`
	Thumbnail    string  `json:"thumbnail"`
}
