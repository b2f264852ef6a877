package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ersonp/rumor-mill/internal/domain/ports"
	"github.com/ersonp/rumor-mill/internal/domain/services"
	"github.com/ersonp/rumor-mill/internal/infrastructure/config"
	embedderopenai "github.com/ersonp/rumor-mill/internal/infrastructure/embedder/openai"
	"github.com/ersonp/rumor-mill/internal/infrastructure/events"
	llmopenai "github.com/ersonp/rumor-mill/internal/infrastructure/llm/openai"
	"github.com/ersonp/rumor-mill/internal/infrastructure/repository/badger"
	"github.com/ersonp/rumor-mill/internal/infrastructure/vectordb/qdrant"
)

// Deps holds the wired dependencies for commands.
type Deps struct {
	Config  *config.Config
	Service *services.RumorService

	// Index is non-nil only when the semantic rumor index is configured.
	Index *qdrant.Index
}

// withDeps loads config, wires the service, calls fn, and cleans up.
// The OpenAI generator and the Qdrant index are optional: without an API
// key the service falls back to the local phrase mutator and substring
// search.
func withDeps(fn func(*Deps) error) error {
	basePath := globalDataDir
	if basePath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
		basePath = cwd
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger()

	repo, err := badger.NewRepository(cfg.StorePath(basePath), logger)
	if err != nil {
		return fmt.Errorf("opening rumor store: %w", err)
	}
	defer repo.Close()

	svcCfg := services.ServiceConfig{
		Publisher:   newBus(logger),
		Decay:       cfg.DecayPolicy(),
		Propagation: cfg.PropagationPolicy(),
		Logger:      logger,
	}

	if cfg.LLM.APIKey != "" {
		generator, err := llmopenai.NewClient(cfg.LLM)
		if err != nil {
			return fmt.Errorf("creating mutation client: %w", err)
		}
		svcCfg.Generator = generator
	}

	var index *qdrant.Index
	if cfg.Embedder.APIKey != "" && cfg.Qdrant.Host != "" {
		emb, err := embedderopenai.NewEmbedder(cfg.Embedder)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}
		index, err = qdrant.NewIndex(cfg.Qdrant, emb)
		if err != nil {
			return fmt.Errorf("creating rumor index: %w", err)
		}
		defer index.Close()

		if err := index.EnsureCollection(context.Background(), embedderopenai.VectorSize); err != nil {
			return fmt.Errorf("ensuring rumor collection: %w", err)
		}
		svcCfg.Index = index
	}

	svc := services.NewRumorService(repo, svcCfg)

	return fn(&Deps{
		Config:  cfg,
		Service: svc,
		Index:   index,
	})
}

// newBus builds the in-process event bus with a debug-log subscriber.
func newBus(logger *slog.Logger) *events.Bus {
	bus := events.NewBus(logger)
	bus.Subscribe("", func(_ context.Context, event ports.Event) {
		logger.Debug("rumor event",
			"type", event.Type,
			"rumor_id", event.RumorID,
			"entity_id", event.EntityID)
	})
	return bus
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if globalVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
