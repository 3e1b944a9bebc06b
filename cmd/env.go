package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/prospectly/leadgen-cli/internal/directory"
	"github.com/prospectly/leadgen-cli/internal/fetcher"
	"github.com/prospectly/leadgen-cli/internal/pipeline"
	"github.com/prospectly/leadgen-cli/internal/store"
	"github.com/prospectly/leadgen-cli/internal/validator"
	anthropicpkg "github.com/prospectly/leadgen-cli/pkg/anthropic"
	"github.com/prospectly/leadgen-cli/pkg/apify"
	"github.com/prospectly/leadgen-cli/pkg/gemini"
)

// pipelineEnv holds the initialized store, clients, and pipeline stages
// needed by the scrape/validate/serve commands.
type pipelineEnv struct {
	Store     store.Store
	Ingestor  *pipeline.Ingestor
	Validator *pipeline.Validator
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "leadgen.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initIngest sets up the store and the directory search client for the
// scrape command. Callers should defer env.Close().
func initIngest(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate("store", "apify"); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	apifyClient := apify.NewClient(cfg.Apify.Token,
		apify.WithRateLimit(cfg.Apify.RatePerSec),
	)
	searcher := directory.New(apifyClient, directory.Config{
		ActorID:      cfg.Apify.Actor,
		PollInterval: time.Duration(cfg.Apify.PollIntervalSecs) * time.Second,
		MaxWait:      time.Duration(cfg.Apify.MaxWaitSecs) * time.Second,
	})

	return &pipelineEnv{
		Store:    st,
		Ingestor: pipeline.NewIngestor(searcher, st),
	}, nil
}

// initValidate sets up the store, website fetcher, and AI scorer for the
// validate command. Callers should defer env.Close().
func initValidate(ctx context.Context, concurrency int) (*pipelineEnv, error) {
	if err := cfg.Validate("store", "ai"); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	textModel, err := initTextModel()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	f := fetcher.New(
		fetcher.WithTimeout(time.Duration(cfg.Fetch.TimeoutSecs)*time.Second),
		fetcher.WithMaxChars(cfg.Fetch.MaxChars),
		fetcher.WithCacheTTL(time.Duration(cfg.Fetch.CacheTTLMins)*time.Minute),
	)
	scorer := validator.NewScorer(textModel)

	v := pipeline.NewValidator(st, f, scorer)
	v.Concurrency = concurrency

	return &pipelineEnv{
		Store:     st,
		Validator: v,
	}, nil
}

func initTextModel() (validator.TextModel, error) {
	switch cfg.AI.Provider {
	case "gemini":
		opts := []gemini.Option{
			gemini.WithModel(cfg.AI.Gemini.Model),
			gemini.WithRateLimit(cfg.AI.Gemini.RatePerSec),
		}
		if cfg.AI.Gemini.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(cfg.AI.Gemini.BaseURL))
		}
		zap.L().Debug("using gemini text model", zap.String("model", cfg.AI.Gemini.Model))
		return &validator.GeminiModel{Client: gemini.NewClient(cfg.AI.Gemini.Key, opts...)}, nil
	case "anthropic":
		zap.L().Debug("using anthropic text model", zap.String("model", cfg.AI.Anthropic.Model))
		return &validator.AnthropicModel{
			Client:    anthropicpkg.NewClient(cfg.AI.Anthropic.Key),
			Model:     cfg.AI.Anthropic.Model,
			MaxTokens: cfg.AI.Anthropic.MaxTokens,
		}, nil
	default:
		return nil, eris.Errorf("unknown ai.provider %q", cfg.AI.Provider)
	}
}
