package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"game-review-service/internal/model"
	"game-review-service/internal/repository"
	"game-review-service/internal/service"
)

type fakeCatalog struct {
	games []model.Game
	err   error
}

func (f *fakeCatalog) Games(context.Context) ([]model.Game, error) { return f.games, f.err }

func testGames() []model.Game {
	return []model.Game{
		{ID: 540, Title: "Overwatch 2", Genre: "Shooter", Platform: "PC (Windows)", ReleaseDate: "2022-10-04", Thumbnail: "540.jpg"},
		{ID: 517, Title: "Lost Ark", Genre: "ARPG", Platform: "PC (Windows)", ReleaseDate: "2022-02-11", Thumbnail: "517.jpg"},
		{ID: 11, Title: "Neverwinter", Genre: "MMORPG", Platform: "Web Browser", ReleaseDate: "2013-12-06", Thumbnail: "11.jpg"},
	}
}

func newTestRouter(t *testing.T, catalog *fakeCatalog) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewReviewRepository(repository.NewMemoryKV(), zap.NewNop())
	svc := service.NewReviewService(repo, catalog, zap.NewNop())

	games := NewGameHandler(catalog, svc)
	games.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

	r := gin.New()
	api := r.Group("/api")
	games.RegisterRoutes(api)
	NewReviewHandler(svc).RegisterRoutes(api)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestReviewLifecycle(t *testing.T) {
	r := newTestRouter(t, &fakeCatalog{games: testGames()})

	w := do(t, r, http.MethodPost, "/api/games/540/reviews", `{"comment":"fun","score":4}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[ReviewResponseDTO](t, w)
	assert.Equal(t, 0, created.Index)
	assert.Equal(t, "Overwatch 2", created.Title)
	assert.Equal(t, "540.jpg", created.Thumbnail)

	w = do(t, r, http.MethodPost, "/api/games/540/reviews", `{"comment":"fun","score":4}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, "/api/games/540/reviews", `{"comment":"meh","score":2}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, decode[ReviewResponseDTO](t, w).Index)

	w = do(t, r, http.MethodPost, "/api/games/540/reviews", `{"comment":"better now","score":3,"editingIndex":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "better now", decode[ReviewResponseDTO](t, w).Comment)

	w = do(t, r, http.MethodPut, "/api/games/540/reviews/0", `{"comment":"great","score":5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/games/540/reviews", "")
	require.Equal(t, http.StatusOK, w.Code)
	reviews := decode[[]ReviewResponseDTO](t, w)
	require.Len(t, reviews, 2)
	assert.Equal(t, "great", reviews[0].Comment)
	assert.Equal(t, "better now", reviews[1].Comment)

	w = do(t, r, http.MethodDelete, "/api/games/540/reviews/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodDelete, "/api/games/540/reviews/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodDelete, "/api/games/540/reviews/0", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/games/540/reviews", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCreateReviewErrors(t *testing.T) {
	r := newTestRouter(t, &fakeCatalog{games: testGames()})

	cases := []struct {
		name string
		path string
		body string
		code int
	}{
		{"score too high", "/api/games/540/reviews", `{"comment":"x","score":6}`, http.StatusBadRequest},
		{"missing score", "/api/games/540/reviews", `{"comment":"x"}`, http.StatusBadRequest},
		{"missing comment", "/api/games/540/reviews", `{"score":3}`, http.StatusBadRequest},
		{"blank comment", "/api/games/540/reviews", `{"comment":"  ","score":3}`, http.StatusBadRequest},
		{"bad json", "/api/games/540/reviews", `{`, http.StatusBadRequest},
		{"unknown game", "/api/games/1/reviews", `{"comment":"x","score":3}`, http.StatusNotFound},
		{"edit missing review", "/api/games/540/reviews", `{"comment":"x","score":3,"editingIndex":2}`, http.StatusNotFound},
		{"negative edit index", "/api/games/540/reviews", `{"comment":"x","score":3,"editingIndex":-1}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, tc.code, w.Code, w.Body.String())
		})
	}

	w := do(t, r, http.MethodDelete, "/api/games/540/reviews/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodPut, "/api/games/540/reviews/0", `{"comment":"x","score":3}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateReviewCatalogDown(t *testing.T) {
	r := newTestRouter(t, &fakeCatalog{err: errors.New("upstream down")})

	w := do(t, r, http.MethodPost, "/api/games/540/reviews", `{"comment":"x","score":3}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = do(t, r, http.MethodGet, "/api/games", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestReviewStoreUnreadable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	kv := repository.NewMemoryKV()
	require.NoError(t, kv.Set(context.Background(), repository.ReviewsKey, `{"version":7,"reviews":{}}`))
	catalog := &fakeCatalog{games: testGames()}
	svc := service.NewReviewService(repository.NewReviewRepository(kv, zap.NewNop()), catalog, zap.NewNop())

	r := gin.New()
	NewReviewHandler(svc).RegisterRoutes(r.Group("/api"))

	w := do(t, r, http.MethodPost, "/api/games/540/reviews", `{"comment":"x","score":3}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = do(t, r, http.MethodDelete, "/api/games/540/reviews/0", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = do(t, r, http.MethodGet, "/api/games/540/reviews", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTopGames(t *testing.T) {
	r := newTestRouter(t, &fakeCatalog{games: testGames()})

	for _, p := range []struct{ id, body string }{
		{"517", `{"comment":"a","score":4}`},
		{"517", `{"comment":"b","score":2}`},
		{"540", `{"comment":"c","score":5}`},
		{"11", `{"comment":"d","score":1}`},
	} {
		w := do(t, r, http.MethodPost, "/api/games/"+p.id+"/reviews", p.body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := do(t, r, http.MethodGet, "/api/top-games", "")
	require.Equal(t, http.StatusOK, w.Code)
	top := decode[[]model.RankedEntry](t, w)
	require.Len(t, top, 3)
	assert.Equal(t, "540", top[0].GameID)
	assert.Equal(t, 5.0, top[0].AverageScore)
	assert.Equal(t, "517", top[1].GameID)
	assert.Equal(t, 3.0, top[1].AverageScore)
	assert.Equal(t, "Lost Ark", top[1].Title)

	w = do(t, r, http.MethodGet, "/api/top-games?limit=1", "")
	assert.Len(t, decode[[]model.RankedEntry](t, w), 1)

	w = do(t, r, http.MethodGet, "/api/top-games?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetGamesFiltersAndAttachesReviews(t *testing.T) {
	r := newTestRouter(t, &fakeCatalog{games: testGames()})
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/api/games/517/reviews", `{"comment":"ok","score":3}`).Code)

	w := do(t, r, http.MethodGet, "/api/games?platform=PC%20(Windows)&name=lost", "")
	require.Equal(t, http.StatusOK, w.Code)
	games := decode[[]GameResponseDTO](t, w)
	require.Len(t, games, 1)
	assert.Equal(t, 517, games[0].ID)
	assert.Equal(t, 3.0, games[0].AverageScore)
	assert.Equal(t, 1, games[0].ReviewCount)
	require.Len(t, games[0].Reviews, 1)

	w = do(t, r, http.MethodGet, "/api/games?genre=Shooter", "")
	games = decode[[]GameResponseDTO](t, w)
	require.Len(t, games, 1)
	assert.Empty(t, games[0].Reviews)
	assert.NotNil(t, games[0].Reviews)
}

func TestGenresPlatformsStats(t *testing.T) {
	r := newTestRouter(t, &fakeCatalog{games: testGames()})

	w := do(t, r, http.MethodGet, "/api/genres", "")
	assert.JSONEq(t, `["Shooter","ARPG","MMORPG"]`, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/platforms", "")
	assert.JSONEq(t, `["PC (Windows)","Web Browser"]`, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[model.CatalogStats](t, w)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, []model.CountEntry{
		{Label: "2020", Count: 0},
		{Label: "2021", Count: 0},
		{Label: "2022", Count: 2},
		{Label: "2023", Count: 0},
		{Label: "2024", Count: 0},
	}, stats.ReleaseYears)
}
