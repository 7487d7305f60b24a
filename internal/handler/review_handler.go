package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"game-review-service/internal/model"
	"game-review-service/internal/service"
)

// ReviewRequestDTO is the JSON payload for creating a review, or editing one
// when EditingIndex is set.
type ReviewRequestDTO struct {
	Comment      string `json:"comment" binding:"required"`
	Score        int    `json:"score" binding:"required,min=1,max=5"`
	EditingIndex *int   `json:"editingIndex" binding:"omitempty,min=0"`
}

// ReviewUpdateDTO is the JSON payload for PUT on a single review.
type ReviewUpdateDTO struct {
	Comment string `json:"comment" binding:"required"`
	Score   int    `json:"score" binding:"required,min=1,max=5"`
}

// ReviewResponseDTO is what we return for each review. Index is the position
// to pass back for edits and deletes.
type ReviewResponseDTO struct {
	Index     int    `json:"index"`
	Comment   string `json:"comment"`
	Score     int    `json:"score"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}

// ReviewHandler ties HTTP requests to the ReviewService.
type ReviewHandler struct {
	reviewSvc *service.ReviewService
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(rs *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: rs}
}

// RegisterRoutes registers:
//
//	GET    /games/:id/reviews
//	POST   /games/:id/reviews
//	PUT    /games/:id/reviews/:index
//	DELETE /games/:id/reviews/:index
//	GET    /top-games
func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/games/:id/reviews")
	{
		grp.GET("", h.GetReviews)
		grp.POST("", h.CreateReview)
		grp.PUT("/:index", h.UpdateReview)
		grp.DELETE("/:index", h.DeleteReview)
	}
	rg.GET("/top-games", h.GetTopGames)
}

// GetReviews handles GET /games/:id/reviews
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	reviews := h.reviewSvc.Reviews(c.Request.Context(), c.Param("id"))

	out := make([]ReviewResponseDTO, 0, len(reviews))
	for i, r := range reviews {
		out = append(out, toReviewDTO(i, r))
	}
	c.JSON(http.StatusOK, out)
}

// CreateReview handles POST /games/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	gameID := c.Param("id")

	var req ReviewRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, index, err := h.reviewSvc.Submit(
		c.Request.Context(),
		gameID,
		model.ReviewInput{Comment: req.Comment, Score: req.Score},
		req.EditingIndex,
	)
	if err != nil {
		writeError(c, err)
		return
	}

	if req.EditingIndex != nil {
		c.JSON(http.StatusOK, toReviewDTO(index, saved))
		return
	}
	c.JSON(http.StatusCreated, toReviewDTO(index, saved))
}

// UpdateReview handles PUT /games/:id/reviews/:index
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}

	var req ReviewUpdateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, _, err := h.reviewSvc.Submit(
		c.Request.Context(),
		c.Param("id"),
		model.ReviewInput{Comment: req.Comment, Score: req.Score},
		&index,
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewDTO(index, saved))
}

// DeleteReview handles DELETE /games/:id/reviews/:index
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	if err := h.reviewSvc.Delete(c.Request.Context(), c.Param("id"), index); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// GetTopGames handles GET /top-games?limit=10
func (h *ReviewHandler) GetTopGames(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultTopLimit)))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	c.JSON(http.StatusOK, h.reviewSvc.TopGames(c.Request.Context(), limit))
}

func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return 0, false
	}
	return index, true
}

func toReviewDTO(index int, r model.Review) ReviewResponseDTO {
	return ReviewResponseDTO{
		Index:     index,
		Comment:   r.Comment,
		Score:     r.Score,
		Title:     r.Title,
		Thumbnail: r.Thumbnail,
	}
}

// writeError maps service errors to HTTP statuses.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
	case errors.Is(err, service.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
	case errors.Is(err, service.ErrDuplicateReview):
		c.JSON(http.StatusConflict, gin.H{"error": "an identical review already exists"})
	case errors.Is(err, service.ErrInvalidScore), errors.Is(err, service.ErrEmptyComment):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCatalogUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "game catalog unavailable"})
	case errors.Is(err, service.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "review store unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
