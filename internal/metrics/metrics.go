package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReviewMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamereviews_review_mutations_total",
		Help: "Review mutations persisted, by operation.",
	}, []string{"op"})

	CatalogFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamereviews_catalog_fetch_total",
		Help: "Catalog refresh attempts, by result.",
	}, []string{"result"})

	ReviewedGames = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gamereviews_reviewed_games",
		Help: "Games with at least one review in the current store.",
	})
)
