package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/movies-api/internal/config"
	httpserver "github.com/Clark-Hu/movies-api/internal/http"
	"github.com/Clark-Hu/movies-api/internal/repository"
	"github.com/Clark-Hu/movies-api/internal/seed"
	"github.com/Clark-Hu/movies-api/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config error", zap.Error(err))
	}

	logger, err := newLogger(cfg)
	if err != nil {
		zap.NewExample().Fatal("init logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("service", "movies-api"))

	seedCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.SeedTimeoutSecs)*time.Second)
	defer cancel()

	src, st, err := seedSource(seedCtx, cfg, logger)
	if err != nil {
		logger.Fatal("init seed source", zap.Error(err))
	}
	if st != nil {
		defer st.Close()
	}

	movies, err := src.Load(seedCtx)
	if err != nil {
		logger.Fatal("load seed movies", zap.Error(err))
	}

	repo := repository.New()
	n, err := seed.Populate(ctx, repo.Movies, movies)
	if err != nil {
		logger.Fatal("populate store", zap.Error(err))
	}
	logger.Info("seed loaded", zap.Int("movies", n))

	var health httpserver.HealthChecker
	if st != nil {
		health = st
	}
	server := httpserver.New(cfg, repo, health, logger)

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.LogDevelopment {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// seedSource picks the seed database, then the seed URL, then the seed file.
// The returned store is non-nil only for the database source.
func seedSource(ctx context.Context, cfg config.Config, logger *zap.Logger) (seed.Source, *store.Store, error) {
	switch {
	case cfg.SeedDBURL != "":
		st, err := store.New(ctx, cfg.SeedDBURL, store.Options{
			MaxConns:    int32(cfg.DBMaxConns),
			MinConns:    int32(cfg.DBMinConns),
			ConnTimeout: time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
			Logger:      logger,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("seeding from postgres", zap.String("table", cfg.SeedTable))
		return seed.PostgresSource{Pool: st.Pool(), Table: cfg.SeedTable}, st, nil
	case cfg.SeedURL != "":
		src, err := seed.NewHTTPSource(cfg.SeedURL, time.Duration(cfg.SeedTimeoutSecs)*time.Second, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("seeding from url")
		return src, nil, nil
	default:
		logger.Info("seeding from file", zap.String("path", cfg.SeedFile))
		return seed.FileSource{Path: cfg.SeedFile}, nil, nil
	}
}
