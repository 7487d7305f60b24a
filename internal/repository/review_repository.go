package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"game-review-service/internal/model"
)

// ReviewsKey is the single key the review store is persisted under.
const ReviewsKey = "gameReviews"

// StoreVersion is the current persisted schema version. Version 0 is the
// legacy bare map without an envelope.
const StoreVersion = 1

// ErrUnsupportedVersion marks a record written by a newer schema version.
var ErrUnsupportedVersion = errors.New("unsupported store version")

type persistedStore struct {
	Version *int              `json:"version"`
	Reviews model.ReviewStore `json:"reviews"`
}

// ReviewRepository loads and saves the whole ReviewStore as one JSON record.
type ReviewRepository struct {
	kv  KVStore
	log *zap.Logger
}

// NewReviewRepository returns a ReviewRepository persisting through kv.
func NewReviewRepository(kv KVStore, log *zap.Logger) *ReviewRepository {
	return &ReviewRepository{kv: kv, log: log}
}

// Load returns the persisted store. Absent or unparsable data yields an empty
// store and no error. A failed read or a record from a newer schema version
// also yields an empty store, but the error is returned: the stored record may
// still hold reviews and must not be overwritten.
func (r *ReviewRepository) Load(ctx context.Context) (model.ReviewStore, error) {
	raw, ok, err := r.kv.Get(ctx, ReviewsKey)
	if err != nil {
		r.log.Warn("review store read failed, serving empty", zap.Error(err))
		return model.ReviewStore{}, fmt.Errorf("ReviewRepository.Load: %w", err)
	}
	if !ok || raw == "" {
		return model.ReviewStore{}, nil
	}

	store, version, err := decodeStore([]byte(raw))
	if errors.Is(err, ErrUnsupportedVersion) {
		r.log.Warn("review store written by a newer version, serving empty", zap.Int("version", version))
		return model.ReviewStore{}, fmt.Errorf("ReviewRepository.Load: %w", err)
	}
	if err != nil {
		r.log.Warn("review store unparsable, starting empty", zap.Error(err))
		return model.ReviewStore{}, nil
	}
	r.log.Debug("review store loaded",
		zap.Int("version", version),
		zap.Int("games", len(store)),
	)
	return store, nil
}

// Save overwrites the persisted record with the complete store.
func (r *ReviewRepository) Save(ctx context.Context, store model.ReviewStore) error {
	v := StoreVersion
	if store == nil {
		store = model.ReviewStore{}
	}
	data, err := json.Marshal(persistedStore{Version: &v, Reviews: store})
	if err != nil {
		return fmt.Errorf("ReviewRepository.Save: encode: %w", err)
	}
	if err := r.kv.Set(ctx, ReviewsKey, string(data)); err != nil {
		return fmt.Errorf("ReviewRepository.Save: %w", err)
	}
	return nil
}

func decodeStore(data []byte) (model.ReviewStore, int, error) {
	var env persistedStore
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, 0, fmt.Errorf("decode envelope: %w", err)
	}

	version := 0
	store := env.Reviews
	if env.Version != nil {
		version = *env.Version
		if version > StoreVersion {
			return nil, version, fmt.Errorf("%w %d", ErrUnsupportedVersion, version)
		}
	} else {
		store = nil
		if err := json.Unmarshal(data, &store); err != nil {
			return nil, 0, fmt.Errorf("decode legacy store: %w", err)
		}
	}

	out := make(model.ReviewStore, len(store))
	for gameID, reviews := range store {
		if len(reviews) > 0 {
			out[gameID] = reviews
		}
	}
	return out, version, nil
}
