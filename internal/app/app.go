package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sandeepkv93/storefront-session-gateway/internal/authz"
	"github.com/sandeepkv93/storefront-session-gateway/internal/cache"
	"github.com/sandeepkv93/storefront-session-gateway/internal/client"
	"github.com/sandeepkv93/storefront-session-gateway/internal/config"
	"github.com/sandeepkv93/storefront-session-gateway/internal/http/handler"
	"github.com/sandeepkv93/storefront-session-gateway/internal/http/router"
	"github.com/sandeepkv93/storefront-session-gateway/internal/observability"
	"github.com/sandeepkv93/storefront-session-gateway/internal/prefs"
	"github.com/sandeepkv93/storefront-session-gateway/internal/session"
	"github.com/sandeepkv93/storefront-session-gateway/internal/token"
)

type App struct {
	Config          *config.Config
	Logger          *slog.Logger
	Server          *http.Server
	Observability   *observability.Runtime
	ShutdownTimeout time.Duration
}

func New(cfg *config.Config, logger *slog.Logger, server *http.Server, runtime *observability.Runtime) *App {
	return &App{
		Config:          cfg,
		Logger:          logger,
		Server:          server,
		Observability:   runtime,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Run serves until ctx is canceled or the listener fails, then drains
// in-flight requests and flushes telemetry within the shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		a.Logger.Info("gateway listening", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down", "timeout", a.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("drain http server: %w", err))
	}
	if err := a.Observability.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("flush telemetry: %w", err))
	}
	return errors.Join(errs...)
}

func provideInventoryCache(cfg *config.Config, logger *slog.Logger) cache.InventoryCacheStore {
	if cfg.RedisAddr == "" {
		logger.Info("inventory cache: in-memory")
		return cache.NewInMemoryInventoryCacheStore()
	}
	logger.Info("inventory cache: redis", "addr", cfg.RedisAddr)
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return cache.NewRedisInventoryCacheStore(rdb, "inventory")
}

func provideRegistry(cfg *config.Config, logger *slog.Logger, preferences prefs.StorePreferenceRepository, inventoryCache cache.InventoryCacheStore) (*session.Registry, error) {
	httpClient := client.NewHTTPClient(client.Options{Timeout: cfg.ClientTimeout, EnableOTel: cfg.EnableOTelHTTP})

	identity, err := client.NewIdentityClient(cfg.IdentityBaseURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("identity client: %w", err)
	}
	companies, err := client.NewCompanyClient(cfg.CompanyBaseURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("company client: %w", err)
	}
	subscriptions, err := client.NewSubscriptionClient(cfg.SubscriptionBaseURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("subscription client: %w", err)
	}
	inventory, err := client.NewInventoryClient(cfg.InventoryBaseURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("inventory client: %w", err)
	}

	codec := token.NewCodec()
	return session.NewRegistry(func(refreshCredential string) *session.Store {
		return session.NewStore(session.Deps{
			Codec:         codec,
			Identity:      identity,
			Companies:     companies,
			Subscriptions: subscriptions,
			Inventory:     inventory,
			Preferences:   preferences,
			Cache:         inventoryCache,
			CacheTTL:      cfg.InventoryCacheTTL,
			Logger:        logger,
		}, refreshCredential)
	}), nil
}

func provideServer(cfg *config.Config, registry *session.Registry) *http.Server {
	h := router.NewRouter(router.Dependencies{
		AuthHandler:    handler.NewAuthHandler(registry, cfg.SessionCookieName),
		SessionHandler: handler.NewSessionHandler(),
		Registry:       registry,
		Table:          authz.DefaultTable(),
		CookieName:     cfg.SessionCookieName,
		LoginPath:      cfg.LoginPath,
		LandingPath:    cfg.LandingPath,
		EnableOTelHTTP: cfg.EnableOTelHTTP,
	})
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
