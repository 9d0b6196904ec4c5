package httpserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/movies-api/internal/config"
	"github.com/Clark-Hu/movies-api/internal/repository"
)

func TestServer_ShutdownWhileStarting(t *testing.T) {
	cfg := config.Defaults()
	cfg.Port = "0"
	srv := New(cfg, repository.New(), nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("Shutdown() unexpected error: %v", err)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("Start() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	srv := New(config.Defaults(), repository.New(), nil, zap.NewNop())
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() unexpected error: %v", err)
	}
}
