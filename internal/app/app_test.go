package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/sandeepkv93/storefront-session-gateway/internal/cache"
	"github.com/sandeepkv93/storefront-session-gateway/internal/config"
	"github.com/sandeepkv93/storefront-session-gateway/internal/observability"
)

func TestNewAssignsDependenciesAndTimeout(t *testing.T) {
	cfg := &config.Config{ShutdownTimeout: 10 * time.Second}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := &http.Server{Addr: ":8080", ReadHeaderTimeout: time.Second}
	runtime := &observability.Runtime{}

	a := New(cfg, logger, server, runtime)
	if a.Config != cfg || a.Logger != logger || a.Server != server || a.Observability != runtime {
		t.Fatal("expected app dependencies to be assigned")
	}
	if a.ShutdownTimeout != cfg.ShutdownTimeout {
		t.Fatal("expected shutdown timeout copied from config")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := &config.Config{ShutdownTimeout: time.Second}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := &http.Server{Addr: "127.0.0.1:0", ReadHeaderTimeout: time.Second}

	a := New(cfg, logger, server, &observability.Runtime{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run after cancel: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}

func TestProvideInventoryCacheDefaultsToInMemory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := provideInventoryCache(&config.Config{}, logger)
	if _, ok := store.(*cache.InMemoryInventoryCacheStore); !ok {
		t.Fatalf("expected in-memory cache without redis, got %T", store)
	}
}

func TestProvideInventoryCacheUsesRedisWhenConfigured(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := provideInventoryCache(&config.Config{RedisAddr: "localhost:6379"}, logger)
	if _, ok := store.(*cache.RedisInventoryCacheStore); !ok {
		t.Fatalf("expected redis cache, got %T", store)
	}
}
