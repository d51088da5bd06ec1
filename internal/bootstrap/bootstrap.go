package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vlad-alaukhov/Docibot/internal/config"
	"github.com/vlad-alaukhov/Docibot/internal/core/ports"
	"github.com/vlad-alaukhov/Docibot/internal/core/usecase"
	"github.com/vlad-alaukhov/Docibot/internal/infrastructure/discovery/fsys"
	"github.com/vlad-alaukhov/Docibot/internal/infrastructure/embedding/ollama"
	natsbus "github.com/vlad-alaukhov/Docibot/internal/infrastructure/events/nats"
	"github.com/vlad-alaukhov/Docibot/internal/infrastructure/history/postgres"
	"github.com/vlad-alaukhov/Docibot/internal/infrastructure/resilience"
	"github.com/vlad-alaukhov/Docibot/internal/infrastructure/sessionstore/memory"
	"github.com/vlad-alaukhov/Docibot/internal/infrastructure/vector/flatindex"
	"github.com/vlad-alaukhov/Docibot/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Assistant ports.Assistant
	Sessions  *memory.Store
	// Bus is nil when NATS_URL is unset; the worker requires it.
	Bus *natsbus.Bus

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	embedGuard := resilience.NewGuard("ollama", resilience.DefaultConfig(), ollama.ClassifyError, logger)
	embedder := ollama.NewEmbedder(cfg.OllamaURL, cfg.OllamaEmbedModel, embedGuard)

	var loader ports.IndexLoader
	switch cfg.IndexBackend {
	case "qdrant":
		loader = qdrant.NewLoader(cfg.QdrantURL, logger)
	case "flat", "":
		loader = flatindex.NewLoader(logger)
	default:
		return nil, fmt.Errorf("unknown index backend %q", cfg.IndexBackend)
	}

	sessions := memory.NewStore()
	discovery := fsys.NewDiscovery(cfg.IndexRoot)

	var closers []func()

	var events ports.EventPublisher
	var bus *natsbus.Bus
	if cfg.NATSURL != "" {
		busGuard := resilience.NewGuard("nats", resilience.DefaultConfig(), natsbus.ClassifyError, logger)
		var err error
		bus, err = natsbus.Connect(cfg.NATSURL, cfg.NATSSubject, natsbus.Options{
			Guard:  busGuard,
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		events = bus
		closers = append(closers, bus.Close)
	}

	var history ports.QueryHistoryStore
	if cfg.PostgresDSN != "" {
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewHistoryRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		history = repo
		closers = append(closers, func() { _ = db.Close() })
	}

	searcher := usecase.NewSearcher(embedder, cfg.SearchIndexTimeout, logger)
	rebuilder := usecase.NewReconstructor(nil, logger)

	assistant := usecase.NewAssistant(
		usecase.AssistantConfig{
			TopPerIndex:   cfg.SearchTopK,
			ResultLimit:   cfg.ResultLimit,
			ExcerptRunes:  cfg.ExcerptLength,
			MaxPartSize:   cfg.MaxMessageSize,
			HeaderReserve: cfg.MessageHeaderReserve,
			HistoryLimit:  cfg.HistoryLimit,
		},
		sessions,
		discovery,
		loader,
		searcher,
		rebuilder,
		events,
		history,
		logger,
	)

	return &App{
		Config:    cfg,
		Assistant: assistant,
		Sessions:  sessions,
		Bus:       bus,
		closeFn: func() {
			for _, fn := range closers {
				fn()
			}
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
