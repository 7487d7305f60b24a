package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"game-review-service/internal/model"
	"game-review-service/internal/service"
)

// GameResponseDTO is a catalog entry together with its reviews.
type GameResponseDTO struct {
	model.Game
	AverageScore float64        `json:"averageScore"`
	ReviewCount  int            `json:"reviewCount"`
	Reviews      []model.Review `json:"reviews"`
}

// GameHandler serves the catalog, its filters and its statistics.
type GameHandler struct {
	catalog service.CatalogSource
	reviews *service.ReviewService
	now     func() time.Time
}

// NewGameHandler returns a GameHandler over the catalog and review service.
func NewGameHandler(catalog service.CatalogSource, reviews *service.ReviewService) *GameHandler {
	return &GameHandler{catalog: catalog, reviews: reviews, now: time.Now}
}

// RegisterRoutes registers all catalog routes.
func (h *GameHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/games", h.GetGames)
	rg.GET("/genres", h.GetGenres)
	rg.GET("/platforms", h.GetPlatforms)
	rg.GET("/stats", h.GetStats)
}

// GET /api/games?genre=...&platform=...&name=...
func (h *GameHandler) GetGames(c *gin.Context) {
	games, ok := h.loadCatalog(c)
	if !ok {
		return
	}

	filtered := service.FilterGames(games, service.GameFilter{
		Genre:    c.Query("genre"),
		Platform: c.Query("platform"),
		Name:     c.Query("name"),
	})

	store := h.reviews.Snapshot(c.Request.Context())
	out := make([]GameResponseDTO, 0, len(filtered))
	for _, g := range filtered {
		reviews := service.ReviewsFor(store, g.Key())
		out = append(out, GameResponseDTO{
			Game:         g,
			AverageScore: service.AverageScore(reviews),
			ReviewCount:  len(reviews),
			Reviews:      reviews,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/genres
func (h *GameHandler) GetGenres(c *gin.Context) {
	games, ok := h.loadCatalog(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.Genres(games))
}

// GET /api/platforms
func (h *GameHandler) GetPlatforms(c *gin.Context) {
	games, ok := h.loadCatalog(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.Platforms(games))
}

// GET /api/stats
func (h *GameHandler) GetStats(c *gin.Context) {
	games, ok := h.loadCatalog(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.ComputeStats(games, h.now()))
}

func (h *GameHandler) loadCatalog(c *gin.Context) ([]model.Game, bool) {
	games, err := h.catalog.Games(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "game catalog unavailable"})
		return nil, false
	}
	return games, true
}
