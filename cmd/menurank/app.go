package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/menurank/internal/config"
	"github.com/kailas-cloud/menurank/internal/db"
	dbBolt "github.com/kailas-cloud/menurank/internal/db/bolt"
	dbValkey "github.com/kailas-cloud/menurank/internal/db/valkey"
	"github.com/kailas-cloud/menurank/internal/domain"
	"github.com/kailas-cloud/menurank/internal/metrics"
	catalogrepo "github.com/kailas-cloud/menurank/internal/repository/catalog"
	collectionrepo "github.com/kailas-cloud/menurank/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/menurank/internal/repository/document"
	"github.com/kailas-cloud/menurank/internal/repository/embcache"
	searchrepo "github.com/kailas-cloud/menurank/internal/repository/search"
	ollamaEmb "github.com/kailas-cloud/menurank/internal/transport/ollama"
	openaiTransport "github.com/kailas-cloud/menurank/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/menurank/internal/usecase/embedding"
	"github.com/kailas-cloud/menurank/internal/usecase/extraction"
	healthuc "github.com/kailas-cloud/menurank/internal/usecase/health"
	indexuc "github.com/kailas-cloud/menurank/internal/usecase/index"
	recommenduc "github.com/kailas-cloud/menurank/internal/usecase/recommend"
)

// app is the composition root shared by every subcommand.
type app struct {
	store     db.Store
	source    *catalogrepo.FileSource
	recommend *recommenduc.Service
	health    *healthuc.Service
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	domain.KeyPrefix = cfg.Storage.KeyPrefix

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterIndexMetrics()

	store, err := openStore(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create database store: %w", err)
	}

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	docEmbedder, err := buildEmbedder(cfg.Embedding, cfg.Embedding.DocumentInstruction, store, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	queryEmbedder, err := buildEmbedder(cfg.Embedding, cfg.Embedding.QueryInstruction, store, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	collRepo := collectionrepo.New(store).WithHNSW(collectionrepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})
	idx := indexuc.New(collRepo, documentrepo.New(store), searchrepo.New(store), docEmbedder, logger).
		WithBatchSize(cfg.Embedding.BatchSize).
		WithDimensions(cfg.Embedding.Dimensions)

	rec := recommenduc.New(idx, queryEmbedder, buildExtractor(cfg.Extraction, logger), cfg.Index.Collection, logger)
	health := healthuc.New(store, newEmbeddingHealthChecker(docEmbedder)).WithIndex(idx, cfg.Index.Collection)

	return &app{
		store:     store,
		source:    catalogrepo.NewFileSource(cfg.Catalog.Restaurants, cfg.Catalog.Menu, logger),
		recommend: rec,
		health:    health,
	}, nil
}

func (a *app) Close() {
	a.store.Close()
}

// openStore creates the database store for the configured driver.
// valkey-search and Redis 8 speak the same FT.* subset, so both use the rueidis store.
func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverValkey, config.DriverRedis:
		return dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
	case config.DriverBolt:
		return dbBolt.NewStore(dbBolt.Config{Path: cfg.Path})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// buildEmbedder assembles the decorator chain:
// provider -> cache -> instrumented -> retry -> normalize -> instruction.
func buildEmbedder(
	cfg config.EmbeddingConfig,
	instruction string,
	store db.Store,
	logger *zap.Logger,
) (domain.Embedder, error) {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second

	var base domain.Embedder
	switch cfg.Provider {
	case config.ProviderOllama:
		emb, err := ollamaEmb.NewEmbedder(&ollamaEmb.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama embedder: %w", err)
		}
		base = emb
	default:
		base = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Timeout:    timeout,
			Logger:     logger,
		})
	}

	embedder := base
	if cfg.Cache.Enabled {
		ttl := time.Duration(cfg.Cache.TTLSec) * time.Second
		embedder = embcache.New(embedder, store, cfg.Model, ttl, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, cfg.BatchSize, logger)

	if cfg.MaxRetries > 0 {
		retry := embeddinguc.DefaultRetryConfig()
		retry.MaxRetries = cfg.MaxRetries
		embedder = embeddinguc.NewRetryEmbedder(embedder, retry, cfg.Provider, cfg.Model, logger)
	}

	embedder = embeddinguc.NewNormalizingEmbedder(embedder)

	// Outermost, so the cache key covers the instruction.
	if instruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder, nil
}

// buildExtractor returns the chat-completion extractor backed by keyword rules,
// or the rules alone when extraction is disabled.
func buildExtractor(cfg config.ExtractionConfig, logger *zap.Logger) extraction.Extractor {
	rules := extraction.NewRuleBased()
	if !cfg.Enabled {
		return rules
	}
	llm := openaiTransport.NewExtractor(&openaiTransport.ExtractorConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		Logger:  logger,
	})
	return extraction.WithFallback(llm, rules, logger)
}

// embeddingHealthChecker adapts domain.Embedder to health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
