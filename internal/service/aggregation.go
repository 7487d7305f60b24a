package service

import (
	"sort"
	"strconv"

	"game-review-service/internal/model"
)

// DefaultTopLimit is the leaderboard size used when no positive limit is given.
const DefaultTopLimit = 10

// The functions in this file never mutate their input store and never fail.

// ReviewsFor returns the reviews of gameID in submission order, or an empty slice.
func ReviewsFor(store model.ReviewStore, gameID string) []model.Review {
	reviews, ok := store[gameID]
	if !ok {
		return []model.Review{}
	}
	return append([]model.Review(nil), reviews...)
}

// IsDuplicate reports whether reviews already holds an entry with the same
// comment and score as in.
func IsDuplicate(reviews []model.Review, in model.ReviewInput) bool {
	for _, r := range reviews {
		if r.Comment == in.Comment && r.Score == in.Score {
			return true
		}
	}
	return false
}

// SubmitReview returns a new store with in recorded for gameID. Title and
// thumbnail are taken from game. With editingIndex set the entry at that
// position is replaced; an index outside the list leaves the store unchanged.
// Without it the review is appended unless it duplicates an existing one.
func SubmitReview(store model.ReviewStore, gameID string, game model.Game, in model.ReviewInput, editingIndex *int) model.ReviewStore {
	out := store.Clone()
	review := model.Review{
		Comment:   in.Comment,
		Score:     in.Score,
		Title:     game.Title,
		Thumbnail: game.Thumbnail,
	}

	list := out[gameID]
	switch {
	case editingIndex != nil:
		i := *editingIndex
		if i < 0 || i >= len(list) {
			return out
		}
		list[i] = review
	case IsDuplicate(list, in):
		return out
	default:
		list = append(list, review)
	}
	out[gameID] = list
	return out
}

// DeleteReview returns a new store without the review at index. The game's key
// is removed when its last review goes. A missing index is a no-op.
func DeleteReview(store model.ReviewStore, gameID string, index int) model.ReviewStore {
	out := store.Clone()
	list, ok := out[gameID]
	if !ok || index < 0 || index >= len(list) {
		return out
	}

	list = append(list[:index], list[index+1:]...)
	if len(list) == 0 {
		delete(out, gameID)
		return out
	}
	out[gameID] = list
	return out
}

// AverageScore is the mean score of reviews, 0 for none.
func AverageScore(reviews []model.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	total := 0
	for _, r := range reviews {
		total += r.Score
	}
	return float64(total) / float64(len(reviews))
}

// RankTopGames orders games by average score, highest first, and keeps the
// first limit entries. Ties keep game id order. Title and thumbnail come from
// each game's first review.
func RankTopGames(store model.ReviewStore, limit int) []model.RankedEntry {
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	ids := make([]string, 0, len(store))
	for id, reviews := range store {
		if len(reviews) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return lessGameID(ids[i], ids[j]) })

	entries := make([]model.RankedEntry, 0, len(ids))
	for _, id := range ids {
		reviews := store[id]
		entries = append(entries, model.RankedEntry{
			GameID:       id,
			AverageScore: AverageScore(reviews),
			ReviewCount:  len(reviews),
			Title:        reviews[0].Title,
			Thumbnail:    reviews[0].Thumbnail,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AverageScore > entries[j].AverageScore
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// lessGameID orders numeric ids numerically ahead of any other ids, which
// sort lexically.
func lessGameID(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	}
	return a < b
}
