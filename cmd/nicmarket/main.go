// Command nicmarket indexes and analyzes financial disclosures from
// Nicaraguan securities issuers.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	configfile "github.com/Arturo-valle/Firabase-1-sub000/internal/adapters/driven/config/file"
	embeddingopenai "github.com/Arturo-valle/Firabase-1-sub000/internal/adapters/driven/embedding/openai"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/adapters/driven/extractor/httpfetch"
	llmopenai "github.com/Arturo-valle/Firabase-1-sub000/internal/adapters/driven/llm/openai"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/adapters/driven/storage/sqlite"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/adapters/driving/cli"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/cache"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/chunker"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/services"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env carries the API key in development setups.
	_ = godotenv.Load()

	cfgPath := os.Getenv("NICMARKET_CONFIG")
	if cfgPath == "" {
		var err error
		cfgPath, err = configfile.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}
	}

	cfgStore, err := configfile.NewStore(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := cfgStore.Watch(ctx); err != nil {
		logger.Warn("config watching disabled: %v", err)
	} else {
		defer cfgStore.Close()
	}
	cfg := cfgStore.Config()

	db, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	docStore := db.DocumentStore()
	metricsStore := db.MetricsStore()

	wired := cli.Services{
		ServeAddr: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
	}

	// AI-backed services need a key; without one the index can still be
	// served read-only through commands that check their own wiring.
	if cfg.OpenAI.APIKey == "" {
		logger.Warn("no API key configured, AI-backed commands are unavailable")
		return cli.Execute(wired)
	}

	embedder, err := embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
		APIKey:            cfg.OpenAI.APIKey,
		BaseURL:           cfg.OpenAI.BaseURL,
		Model:             cfg.OpenAI.EmbeddingModel,
		Dimensions:        cfg.OpenAI.Dimensions,
		RequestsPerMinute: cfg.OpenAI.RequestsPerMinute,
	})
	if err != nil {
		return fmt.Errorf("configuring embeddings: %w", err)
	}

	llm, err := llmopenai.NewLLMService(llmopenai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.LLMModel,
	})
	if err != nil {
		return fmt.Errorf("configuring generation: %w", err)
	}

	var chunkerOpts []chunker.Option
	if cfg.Chunking.Size > 0 {
		chunkerOpts = append(chunkerOpts, chunker.WithChunkSize(cfg.Chunking.Size))
	}
	if cfg.Chunking.Overlap > 0 {
		chunkerOpts = append(chunkerOpts, chunker.WithOverlap(cfg.Chunking.Overlap))
	}
	splitter := chunker.New(chunkerOpts...)

	var prioritizerOpts []services.PrioritizerOption
	if cfg.Context.PerDocCap > 0 {
		prioritizerOpts = append(prioritizerOpts, services.WithPerDocCap(cfg.Context.PerDocCap))
	}
	prioritizer := services.NewPrioritizer(domain.DefaultScoringPolicy(), prioritizerOpts...)

	var retrievalOpts []services.RetrievalOption
	if cfg.Retrieval.CandidateLimit > 0 {
		retrievalOpts = append(retrievalOpts, services.WithCandidateLimit(cfg.Retrieval.CandidateLimit))
	}
	retrieval := services.NewRetrievalService(docStore, embedder, retrievalOpts...)

	var metricsOpts []services.MetricsOption
	metricsOpts = append(metricsOpts, services.WithCurrencyPolicy(cfgStore.CurrencyPolicy))
	if cfg.Context.Budget > 0 {
		metricsOpts = append(metricsOpts, services.WithContextBudget(cfg.Context.Budget))
	}
	metrics := services.NewMetricsService(docStore, metricsStore, llm, prioritizer, metricsOpts...)

	resultCache := cache.New(time.Duration(cfg.Cache.TTLMinutes) * time.Minute)
	analysis := services.NewAnalysisService(retrieval, docStore, metricsStore, llm, resultCache)

	var ingestOpts []services.IngestOption
	if cfg.Ingest.MaxDocs > 0 {
		ingestOpts = append(ingestOpts, services.WithMaxDocs(cfg.Ingest.MaxDocs))
	}
	extractor := httpfetch.New(httpfetch.Config{})
	ingest := services.NewIngestService(docStore, embedder, extractor, splitter, ingestOpts...)

	wired.Retrieval = retrieval
	wired.Analysis = analysis
	wired.Metrics = metrics
	wired.Ingest = ingest

	return cli.Execute(wired)
}
