package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"game-review-service/internal/catalog"
	"game-review-service/internal/config"
	"game-review-service/internal/database"
	"game-review-service/internal/handler"
	"game-review-service/internal/middleware"
	"game-review-service/internal/mongo"
	"game-review-service/internal/repository"
	"game-review-service/internal/service"
)

// app holds the wired components. close releases the store backend.
type app struct {
	catalog *catalog.Client
	reviews *service.ReviewService
	close   func()
}

// openStore connects the KVStore selected by cfg.StoreDriver.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.KVStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn("using in-memory review store; reviews are lost on exit")
		return repository.NewMemoryKV(), func() {}, nil

	case config.DriverSQLite, config.DriverPostgres, config.DriverPgx:
		db, err := database.Connect(ctx, cfg.StoreDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to SQL store", zap.String("driver", cfg.StoreDriver))
		return repository.NewSQLKV(db), func() { db.Close() }, nil

	case config.DriverMongo:
		client, err := mongo.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to MongoDB", zap.String("database", cfg.MongoDB))
		return repository.NewMongoKV(client, cfg.MongoDB), func() {
			_ = client.Disconnect(context.Background())
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	kv, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	games := catalog.NewClient(cfg.CatalogURL, cfg.CatalogTTL, nil, log.Named("catalog"))
	repo := repository.NewReviewRepository(kv, log.Named("store"))

	return &app{
		catalog: games,
		reviews: service.NewReviewService(repo, games, log.Named("reviews")),
		close:   closeStore,
	}, nil
}

func (a *app) router(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	handler.NewGameHandler(a.catalog, a.reviews).RegisterRoutes(api)
	handler.NewReviewHandler(a.reviews).RegisterRoutes(api)
	return r
}
