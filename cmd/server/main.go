package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/dorm-finder/internal/compare"
	"github.com/iliyamo/dorm-finder/internal/config"
	"github.com/iliyamo/dorm-finder/internal/database"
	"github.com/iliyamo/dorm-finder/internal/datasource"
	"github.com/iliyamo/dorm-finder/internal/handler"
	"github.com/iliyamo/dorm-finder/internal/listing"
	"github.com/iliyamo/dorm-finder/internal/middleware"
	"github.com/iliyamo/dorm-finder/internal/model"
	"github.com/iliyamo/dorm-finder/internal/queue"
	"github.com/iliyamo/dorm-finder/internal/repository"
	"github.com/iliyamo/dorm-finder/internal/router"
	"github.com/iliyamo/dorm-finder/internal/search"
	"github.com/iliyamo/dorm-finder/internal/service"
	"github.com/iliyamo/dorm-finder/internal/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := utils.NewLogger("dorm-finder", cfg.LogLevel)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatalf("open mysql: %v", err)
	}
	defer db.Close()

	store, mongoClient, err := openStore(cfg, db, logger)
	if err != nil {
		logger.Fatalf("open data source: %v", err)
	}
	if mongoClient != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoClient.Disconnect(ctx)
		}()
	}

	zones, err := config.LoadZones(cfg.ZonesFile)
	if err != nil {
		logger.Fatalf("zones: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable; comparison sets, cache and rate limits stay in process")
	} else {
		defer rdb.Close()
	}

	ref := cfg.Reference
	norm := listing.New(cfg.DefaultLang, &ref, zones)
	opts := search.Options{Zones: zones, PriceMatch: cfg.PriceMatch, CoolingMatch: cfg.CoolingMatch}

	catalog := service.NewCatalog(store, store, norm, opts, logger)
	enricher := compare.NewEnricher(store, cfg.EnrichConcurrency,
		utils.Retry{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond},
		datasource.ErrNotFound, logger)
	comparison := service.NewComparison(compare.NewRegistry(compareStore(rdb)), catalog, enricher, norm)

	var pub service.Publisher = service.NopPublisher{}
	if cfg.AMQPURL != "" {
		pub = &service.AMQPPublisher{URL: cfg.AMQPURL, Logger: logger}
	}
	reviews := service.NewReviews(store, pub, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AMQPURL != "" {
		refresher := &service.RatingRefresher{Source: store, Admin: store, Logger: logger}
		go func() {
			if err := queue.StartReviewConsumer(ctx, cfg.AMQPURL, refresher.Handle, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("review consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.LoggerWithConfig(echomw.LoggerConfig{
		Format: "${time_rfc3339} ${id} ${method} ${uri} ${status} ${latency_human}\n",
	}))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	authH := handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db))
	dormH := handler.NewDormHandler(catalog)
	reviewH := handler.NewReviewHandler(reviews)
	compareH := handler.NewCompareHandler(comparison)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterDorms(e, dormH, reviewH, cfg.JWTSecret, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterCompare(e, compareH, cfg.JWTSecret, cfg.Env == "prod")
	router.RegisterAdmin(e, dormH, cfg.JWTSecret)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", "Accept-Language", handler.SearchSessionHeader},
		AllowCredentials: true,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(e),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s (env=%s, source=%s)", srv.Addr, cfg.Env, cfg.DataSource)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
	enricher.Close()
}

// openStore picks the dorm data source named by DATA_SOURCE. The mongo
// client is returned so main can disconnect it.
func openStore(cfg config.Config, db *sql.DB, logger *log.Logger) (datasource.Store, *mongo.Client, error) {
	switch cfg.DataSource {
	case "mongo":
		client, mdb, err := database.OpenMongo(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewMongoDormRepo(mdb), client, nil
	case "memory":
		var recs []model.RawRecord
		if cfg.SeedFile != "" {
			var err error
			if recs, err = datasource.LoadSeed(cfg.SeedFile); err != nil {
				return nil, nil, err
			}
		}
		logger.Infof("memory data source seeded with %d records", len(recs))
		return datasource.NewMemory(recs...), nil, nil
	}
	return repository.NewDormRepo(db), nil, nil
}

func compareStore(rdb *redis.Client) compare.Store {
	if rdb == nil {
		return compare.NewMemoryStore()
	}
	return compare.NewRedisStore(rdb, compare.DefaultRedisTTL)
}
