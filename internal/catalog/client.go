package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"game-review-service/internal/metrics"
	"game-review-service/internal/model"
)

const fetchTimeout = 15 * time.Second

// Client fetches the game catalog and caches it for ttl. Concurrent
// refreshes share one upstream request. When a refresh fails the last good
// copy is served.
type Client struct {
	url  string
	ttl  time.Duration
	http *http.Client
	log  *zap.Logger
	now  func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	games     []model.Game
	fetchedAt time.Time
}

func NewClient(url string, ttl time.Duration, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: fetchTimeout}
	}
	return &Client{
		url:  url,
		ttl:  ttl,
		http: httpClient,
		log:  log,
		now:  time.Now,
	}
}

// Games returns the catalog. The returned slice is shared and must not be modified.
func (c *Client) Games(ctx context.Context) ([]model.Game, error) {
	c.mu.RLock()
	games, fetchedAt := c.games, c.fetchedAt
	c.mu.RUnlock()

	if games != nil && c.now().Sub(fetchedAt) < c.ttl {
		return games, nil
	}

	v, err, _ := c.group.Do("games", func() (interface{}, error) {
		// Detached so one caller's cancellation does not fail the others.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		return c.refresh(fctx)
	})
	if err != nil {
		if games != nil {
			metrics.CatalogFetches.WithLabelValues("stale").Inc()
			c.log.Warn("catalog refresh failed, serving stale copy",
				zap.Error(err),
				zap.Time("fetched_at", fetchedAt),
			)
			return games, nil
		}
		return nil, err
	}
	return v.([]model.Game), nil
}

func (c *Client) refresh(ctx context.Context) ([]model.Game, error) {
	games, err := c.fetch(ctx)
	if err != nil {
		metrics.CatalogFetches.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.CatalogFetches.WithLabelValues("ok").Inc()

	c.mu.Lock()
	c.games = games
	c.fetchedAt = c.now()
	c.mu.Unlock()

	c.log.Info("catalog refreshed", zap.Int("games", len(games)))
	return games, nil
}

func (c *Client) fetch(ctx context.Context) ([]model.Game, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog: upstream returned status %d", resp.StatusCode)
	}

	games := []model.Game{}
	if err := json.NewDecoder(resp.Body).Decode(&games); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if games == nil {
		games = []model.Game{}
	}
	return games, nil
}
