package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ragline/ragline/internal/config"
	"github.com/ragline/ragline/internal/log"
	"github.com/ragline/ragline/internal/ollama"
	"github.com/ragline/ragline/internal/retrieval"
	"github.com/ragline/ragline/internal/tools"
	"github.com/ragline/ragline/internal/vectorstore"
)

// setup loads the validated configuration and builds the logger every
// command shares.
func setup() (*config.Config, log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger := log.New(log.Config{
		Level: parseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})
	return cfg, logger, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openStore connects to Postgres, applies pending migrations and returns
// the vector store over the configured collection. The caller owns the
// returned pool.
func openStore(ctx context.Context, cfg *config.Config, logger log.Logger) (*pgxpool.Pool, *vectorstore.Store, error) {
	if err := vectorstore.Migrate(cfg.DatabaseURL(), logger); err != nil {
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.ConnString())
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pinging postgres: %w", err)
	}

	return pool, vectorstore.New(pool, cfg.CollectionName, logger), nil
}

// newRetriever builds the embed-then-search retriever over store.
func newRetriever(client *ollama.Client, store *vectorstore.Store, cfg *config.Config, logger log.Logger) *retrieval.Retriever {
	return retrieval.New(client, store, cfg.EmbedModel, logger)
}

// newRegistry assembles the built-in tool set.
func newRegistry(retriever *retrieval.Retriever, cfg *config.Config, logger log.Logger) *tools.Registry {
	return tools.NewRegistry(logger,
		tools.NewRetrieveTool(retriever, cfg.NumberOfResults),
		tools.NewCalculatorTool(),
		tools.NewWeatherTool(&tools.WeatherClient{Logger: logger}),
		tools.NewPageTool(&tools.PageExtractor{Logger: logger}),
	)
}
