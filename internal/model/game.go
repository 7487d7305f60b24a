package model

import "strconv"

// Game is one entry of the free-to-play catalog. The JSON layout matches the
// upstream catalog API.
type Game struct {
	ID               int    `json:"id"`
	Title            string `json:"title"`
	Genre            string `json:"genre"`
	Platform         string `json:"platform"`
	ReleaseDate      string `json:"release_date"` // YYYY-MM-DD
	Thumbnail        string `json:"thumbnail"`
	ShortDescription string `json:"short_description"`
	GameURL          string `json:"game_url"`
}

// Key is the identifier used for the game in a ReviewStore.
func (g Game) Key() string {
	return strconv.Itoa(g.ID)
}

// CountEntry is one bucket of a catalog breakdown.
type CountEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CatalogStats backs the distribution charts.
type CatalogStats struct {
	Total        int          `json:"total"`
	ByGenre      []CountEntry `json:"byGenre"`
	ByPlatform   []CountEntry `json:"byPlatform"`
	ReleaseYears []CountEntry `json:"releaseYears"`
}
