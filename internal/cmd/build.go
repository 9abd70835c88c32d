package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/researchpilot/researchpilot"
	"github.com/researchpilot/researchpilot/core"
	"github.com/researchpilot/researchpilot/dispatch"
	"github.com/researchpilot/researchpilot/internal/config"
	"github.com/researchpilot/researchpilot/literature"
	"github.com/researchpilot/researchpilot/logging"
	"github.com/researchpilot/researchpilot/memory"
	memsqlite "github.com/researchpilot/researchpilot/memory/sqlite"
	"github.com/researchpilot/researchpilot/model"
	anthropicmodel "github.com/researchpilot/researchpilot/model/anthropic"
	openaimodel "github.com/researchpilot/researchpilot/model/openai"
)

// buildPlanner assembles a Planner from the loaded configuration. The
// returned cleanup closes any durable store and must be called when done.
func buildPlanner(cfg *config.Config) (*researchpilot.Planner, func(), error) {
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.ParseLevel(cfg.Logging.Level),
		Format:    cfg.Logging.Format,
		Output:    os.Stderr,
		Component: "researchpilot",
	})

	m, err := buildModel(cfg.Model)
	if err != nil {
		return nil, nil, err
	}

	store, cleanup, err := buildStore(cfg.Memory)
	if err != nil {
		return nil, nil, err
	}

	searcher := literature.NewClient(func(o *literature.Options) {
		o.CacheTTL = time.Duration(cfg.Literature.CacheTTLMinutes) * time.Minute
	})

	planner, err := researchpilot.New(m, func(o *researchpilot.Options) {
		o.MemoryStore = store
		o.Searcher = searcher
		o.Logger = logger
		o.DispatchOptions = []func(o *dispatch.Options){func(o *dispatch.Options) {
			o.MaxRetries = uint64(cfg.Dispatch.MaxRetries)
			o.InitialBackoff = time.Duration(cfg.Dispatch.InitialBackoffMs) * time.Millisecond
			o.StageTimeout = time.Duration(cfg.Dispatch.StageTimeoutSeconds) * time.Second
			o.DefaultCategory = core.Category(cfg.Dispatch.DefaultCategory)
		}}
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return planner, cleanup, nil
}

func buildModel(cfg config.ModelConfig) (model.Model, error) {
	switch cfg.Provider {
	case "openai":
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = int64(cfg.MaxTokens)
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.Endpoint
		}), nil
	case "anthropic":
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if cfg.Name != "" {
				o.Model = anthropic.Model(cfg.Name)
			}
			o.Temperature = cfg.Temperature
			o.MaxTokens = int64(cfg.MaxTokens)
			o.APIKey = cfg.APIKey
		}), nil
	case "mock":
		return model.NewMockModel("mock"), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

func buildStore(cfg config.MemoryConfig) (core.MemoryStore, func(), error) {
	noop := func() {}
	switch cfg.Backend {
	case "memory":
		return memory.NewInMemoryStore(), noop, nil
	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, nil, err
		}
		return memory.NewFileStore(cfg.Path), noop, nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, nil, err
		}
		store, err := memsqlite.NewStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown memory backend %q", cfg.Backend)
	}
}
