package service

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"game-review-service/internal/model"
)

// releaseWindowYears is how far back the release-year histogram reaches.
const releaseWindowYears = 5

// GameFilter narrows the catalog. Empty fields match everything.
type GameFilter struct {
	Genre    string
	Platform string
	Name     string // case-insensitive substring of the title
}

// FilterGames returns the games matching every non-empty field of f, in catalog order.
func FilterGames(games []model.Game, f GameFilter) []model.Game {
	name := strings.ToLower(f.Name)
	out := make([]model.Game, 0, len(games))
	for _, g := range games {
		if f.Genre != "" && g.Genre != f.Genre {
			continue
		}
		if f.Platform != "" && g.Platform != f.Platform {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(g.Title), name) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// FindGame looks up a game by its store key.
func FindGame(games []model.Game, gameID string) (model.Game, bool) {
	id, err := strconv.Atoi(gameID)
	if err != nil {
		return model.Game{}, false
	}
	for _, g := range games {
		if g.ID == id {
			return g, true
		}
	}
	return model.Game{}, false
}

// Genres returns the distinct genres in first-seen order.
func Genres(games []model.Game) []string {
	return distinct(games, func(g model.Game) string { return g.Genre })
}

// Platforms returns the distinct platforms in first-seen order.
func Platforms(games []model.Game) []string {
	return distinct(games, func(g model.Game) string { return g.Platform })
}

func distinct(games []model.Game, field func(model.Game) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, g := range games {
		v := field(g)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ComputeStats counts games per genre and platform, and per release year for
// recent years. The last five years (including now's year) always appear,
// even with a zero count.
func ComputeStats(games []model.Game, now time.Time) model.CatalogStats {
	stats := model.CatalogStats{
		Total:      len(games),
		ByGenre:    countBy(games, func(g model.Game) string { return g.Genre }),
		ByPlatform: countBy(games, func(g model.Game) string { return g.Platform }),
	}

	current := now.Year()
	years := make(map[int]int)
	for y := current; y > current-releaseWindowYears; y-- {
		years[y] = 0
	}
	for _, g := range games {
		released, err := time.Parse(time.DateOnly, g.ReleaseDate)
		if err != nil {
			continue
		}
		if y := released.Year(); y >= current-releaseWindowYears {
			years[y]++
		}
	}

	keys := make([]int, 0, len(years))
	for y := range years {
		keys = append(keys, y)
	}
	sort.Ints(keys)
	stats.ReleaseYears = make([]model.CountEntry, 0, len(keys))
	for _, y := range keys {
		stats.ReleaseYears = append(stats.ReleaseYears, model.CountEntry{Label: strconv.Itoa(y), Count: years[y]})
	}
	return stats
}

func countBy(games []model.Game, field func(model.Game) string) []model.CountEntry {
	index := make(map[string]int)
	out := []model.CountEntry{}
	for _, g := range games {
		v := field(g)
		i, ok := index[v]
		if !ok {
			i = len(out)
			index[v] = i
			out = append(out, model.CountEntry{Label: v})
		}
		out[i].Count++
	}
	return out
}
