// Command seedctl validates a seed file and optionally imports it into the
// Postgres table the server can seed from (SEED_DB_URL).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/movies-api/internal/seed"
	"github.com/Clark-Hu/movies-api/internal/store"
)

func main() {
	dataPath := flag.String("data", "data/movies.json", "seed JSON file to validate")
	dbURL := flag.String("db", "", "Postgres URL to import into (validate only when empty)")
	table := flag.String("table", seed.DefaultTable, "seed table name")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if err := run(ctx, logger, *dataPath, *dbURL, *table); err != nil {
		logger.Error("seedctl failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *zap.Logger, dataPath, dbURL, table string) error {
	movies, err := seed.FileSource{Path: dataPath}.Load(ctx)
	if err != nil {
		return err
	}
	logger.Info("seed file valid", zap.String("path", dataPath), zap.Int("movies", len(movies)))
	if dbURL == "" {
		return nil
	}

	st, err := store.New(ctx, dbURL, store.Options{MaxConns: 2, Logger: logger})
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := seed.Import(ctx, st.Pool(), table, movies)
	if err != nil {
		return fmt.Errorf("import after %d rows: %w", n, err)
	}
	logger.Info("seed imported", zap.String("table", table), zap.Int("rows", n))
	return nil
}
