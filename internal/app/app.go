// Package app wires configuration, database, model clients and the
// retrieval pipeline into one container the CLI commands share.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coursewise/coursewise/db"
	"github.com/coursewise/coursewise/internal/agent"
	"github.com/coursewise/coursewise/internal/config"
	"github.com/coursewise/coursewise/internal/database"
	"github.com/coursewise/coursewise/internal/ingest"
	"github.com/coursewise/coursewise/internal/knowledge"
	"github.com/coursewise/coursewise/internal/llm"
	"github.com/coursewise/coursewise/internal/observability"
	"github.com/coursewise/coursewise/internal/rag"
	"github.com/coursewise/coursewise/internal/session"
)

// shutdownTimeout bounds the trace flush during Close.
const shutdownTimeout = 5 * time.Second

// App is the application container. Build it with Setup and release it
// with Close.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Pool      *pgxpool.Pool
	Store     *knowledge.Store
	Sessions  *session.Manager
	Generator *agent.Generator
	System    *rag.System
	Indexer   *ingest.Indexer

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// Setup initializes every component in dependency order. On failure the
// already-initialized parts are released before the error is returned.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	otelShutdown, err := observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: "coursewise",
		Insecure:    true,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("setting up tracing: %w", err)
	}
	a.otelShutdown = otelShutdown

	if err := db.Migrate(cfg.ConnString()); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("opening database pool: %w", err)
	}
	a.Pool = pool

	client, err := llm.NewGemini(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating model client: %w", err)
	}

	embedder, err := llm.NewGeminiEmbedder(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	a.Store = knowledge.New(pool, embedder, cfg.MaxResults, logger)
	a.Sessions = session.NewManager(cfg.MaxHistory, logger)
	a.Generator = agent.New(client, cfg.MaxToolRounds, logger)
	a.System = rag.New(a.Generator, a.Store, a.Sessions, logger)
	a.Indexer = ingest.New(a.Store, cfg.ChunkSize, cfg.ChunkOverlap, logger)

	sweepCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	go a.Sessions.Run(sweepCtx)

	return a, nil
}

// Close releases resources in reverse initialization order.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.otelShutdown(ctx); err != nil {
			return fmt.Errorf("flushing traces: %w", err)
		}
	}
	return nil
}
