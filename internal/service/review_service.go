package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"game-review-service/internal/metrics"
	"game-review-service/internal/model"
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("duplicate review")
	ErrInvalidScore    = errors.New("score must be between 1 and 5")
	ErrEmptyComment    = errors.New("comment must not be empty")

	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrStoreUnavailable   = errors.New("review store unavailable")
)

const (
	MinScore = 1
	MaxScore = 5
)

// CatalogSource supplies the current game catalog.
type CatalogSource interface {
	Games(ctx context.Context) ([]model.Game, error)
}

// StoreRepository persists the whole ReviewStore. Load always returns a usable
// store; a non-nil error means the persisted record could not be read and must
// not be overwritten.
type StoreRepository interface {
	Load(ctx context.Context) (model.ReviewStore, error)
	Save(ctx context.Context, store model.ReviewStore) error
}

// ReviewService owns the current ReviewStore. Every mutation runs the
// aggregation functions on a snapshot, persists the result and only then
// adopts it.
type ReviewService struct {
	repo    StoreRepository
	catalog CatalogSource
	log     *zap.Logger

	mu     sync.Mutex
	store  model.ReviewStore
	loaded bool
}

// NewReviewService constructs a ReviewService. The store is loaded on first use.
func NewReviewService(repo StoreRepository, catalog CatalogSource, log *zap.Logger) *ReviewService {
	return &ReviewService{
		repo:    repo,
		catalog: catalog,
		log:     log,
	}
}

// current must be called with s.mu held. A failed load is not cached, so the
// next call retries it; the empty store returned alongside the error serves
// reads only.
func (s *ReviewService) current(ctx context.Context) (model.ReviewStore, error) {
	if s.loaded {
		return s.store, nil
	}
	store, err := s.repo.Load(ctx)
	if err != nil {
		return store, err
	}
	s.store = store
	s.loaded = true
	metrics.ReviewedGames.Set(float64(len(s.store)))
	return s.store, nil
}

// readable returns the store for read paths, which stay fail-soft.
func (s *ReviewService) readable(ctx context.Context) model.ReviewStore {
	store, err := s.current(ctx)
	if err != nil {
		s.log.Warn("serving reviews from an empty store", zap.Error(err))
	}
	return store
}

// adopt must be called with s.mu held.
func (s *ReviewService) adopt(ctx context.Context, op string, next model.ReviewStore) error {
	if err := s.repo.Save(ctx, next); err != nil {
		return err
	}
	s.store = next
	metrics.ReviewMutations.WithLabelValues(op).Inc()
	metrics.ReviewedGames.Set(float64(len(next)))
	return nil
}

// Snapshot returns a copy of the whole store.
func (s *ReviewService) Snapshot(ctx context.Context) model.ReviewStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readable(ctx).Clone()
}

// Reviews returns the reviews of one game in submission order.
func (s *ReviewService) Reviews(ctx context.Context, gameID string) []model.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ReviewsFor(s.readable(ctx), gameID)
}

// AverageFor returns the average score of a game and its review count.
func (s *ReviewService) AverageFor(ctx context.Context, gameID string) (float64, int) {
	reviews := s.Reviews(ctx, gameID)
	return AverageScore(reviews), len(reviews)
}

// TopGames returns the leaderboard. A non-positive limit means DefaultTopLimit.
func (s *ReviewService) TopGames(ctx context.Context, limit int) []model.RankedEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RankTopGames(s.readable(ctx), limit)
}

// Submit records a review for gameID, or replaces the one at editingIndex,
// and returns the stored review with its position. Unlike SubmitReview it
// reports bad input, unknown games, out-of-range indices and duplicates as
// errors instead of ignoring them. It never saves over a record it could not
// read.
func (s *ReviewService) Submit(ctx context.Context, gameID string, in model.ReviewInput, editingIndex *int) (model.Review, int, error) {
	if in.Score < MinScore || in.Score > MaxScore {
		return model.Review{}, 0, fmt.Errorf("ReviewService.Submit: %w", ErrInvalidScore)
	}
	if strings.TrimSpace(in.Comment) == "" {
		return model.Review{}, 0, fmt.Errorf("ReviewService.Submit: %w", ErrEmptyComment)
	}

	games, err := s.catalog.Games(ctx)
	if err != nil {
		return model.Review{}, 0, fmt.Errorf("ReviewService.Submit: %w: %w", ErrCatalogUnavailable, err)
	}
	game, ok := FindGame(games, gameID)
	if !ok {
		return model.Review{}, 0, fmt.Errorf("ReviewService.Submit: game %s: %w", gameID, ErrGameNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.current(ctx)
	if err != nil {
		return model.Review{}, 0, fmt.Errorf("ReviewService.Submit: %w: %w", ErrStoreUnavailable, err)
	}
	existing := store[gameID]
	op := "create"
	if editingIndex != nil {
		op = "edit"
		if *editingIndex < 0 || *editingIndex >= len(existing) {
			return model.Review{}, 0, fmt.Errorf("ReviewService.Submit: game %s index %d: %w", gameID, *editingIndex, ErrReviewNotFound)
		}
	} else if IsDuplicate(existing, in) {
		return model.Review{}, 0, fmt.Errorf("ReviewService.Submit: game %s: %w", gameID, ErrDuplicateReview)
	}

	next := SubmitReview(store, gameID, game, in, editingIndex)
	if err := s.adopt(ctx, op, next); err != nil {
		return model.Review{}, 0, fmt.Errorf("ReviewService.Submit: save: %w", err)
	}

	list := next[gameID]
	index := len(list) - 1
	if editingIndex != nil {
		index = *editingIndex
	}
	saved := list[index]
	s.log.Debug("review saved",
		zap.String("op", op),
		zap.String("game_id", gameID),
		zap.Int("index", index),
	)
	return saved, index, nil
}

// Delete removes the review at index for gameID.
func (s *ReviewService) Delete(ctx context.Context, gameID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.current(ctx)
	if err != nil {
		return fmt.Errorf("ReviewService.Delete: %w: %w", ErrStoreUnavailable, err)
	}
	if index < 0 || index >= len(store[gameID]) {
		return fmt.Errorf("ReviewService.Delete: game %s index %d: %w", gameID, index, ErrReviewNotFound)
	}

	next := DeleteReview(store, gameID, index)
	if err := s.adopt(ctx, "delete", next); err != nil {
		return fmt.Errorf("ReviewService.Delete: save: %w", err)
	}
	s.log.Debug("review deleted", zap.String("game_id", gameID), zap.Int("index", index))
	return nil
}
