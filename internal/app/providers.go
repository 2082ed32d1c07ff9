package app

import (
	"context"
	"log/slog"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	"gorm.io/gorm"

	"github.com/sandeepkv93/storefront-session-gateway/internal/config"
	"github.com/sandeepkv93/storefront-session-gateway/internal/observability"
	"github.com/sandeepkv93/storefront-session-gateway/internal/prefs"
)

func provideLogger(ctx context.Context, cfg *config.Config) (*slog.Logger, *sdklog.LoggerProvider, error) {
	logger, provider, err := observability.InitLogs(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return logger, provider, nil
}

// provideRuntime folds the logger provider into the runtime so one
// Shutdown call flushes all telemetry.
func provideRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger, lp *sdklog.LoggerProvider) (*observability.Runtime, error) {
	rt, err := observability.InitRuntime(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	rt.LoggerProvider = lp
	return rt, nil
}

func provideDatabase(cfg *config.Config) (*gorm.DB, error) {
	return prefs.OpenDatabase(cfg.DBDriver, cfg.DBDSN)
}
