// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/docuqa/docuqa/internal/config"
	"github.com/docuqa/docuqa/internal/core"
	"github.com/docuqa/docuqa/internal/core/archive"
	"github.com/docuqa/docuqa/internal/core/ingestion_engine"
	"github.com/docuqa/docuqa/internal/core/llm"
	"github.com/docuqa/docuqa/internal/core/searchindex"
	"github.com/docuqa/docuqa/internal/services"
)

type App struct {
	Index    core.SearchIndexClient
	Archive  core.ArchiveClient
	Ingestor ingestion_engine.Ingestor
	Server   *Server
}

// NewApp wires every collaborator explicitly. There are no hidden
// singletons; everything a handler touches arrives through here.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	indexClient, err := searchindex.NewClient(appCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the search index client, %w", err)
	}
	log.Println("Search index client initialized and ready.")

	var archiveClient core.ArchiveClient
	if cfg.ArchiveBucket != "" {
		s3Client, err := archive.NewS3Client(appCtx, cfg)
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize the archive client, %w", err)
		}
		archiveClient = s3Client
		log.Println("Archive client initialized and ready.")
	}

	geminiEmbedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the language model, %w", err)
	}

	visionProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.VisionModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the vision model, %w", err)
	}

	extractor := ingestion_engine.NewExtractor(cfg.RenderDPI, cfg.ImageFormat, cfg.SofficePath, cfg.AntiwordPath, cfg.PdftoppmPath)
	resolver := ingestion_engine.NewImageResolver(visionProvider, cfg.OCRWorkers, cfg.OCRMaxTokens, cfg.ImageFormat)

	ingCfg := &ingestion_engine.IngestConfig{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		BatchSize:    100,
	}
	docIngestor := ingestion_engine.NewDocumentIngestor(indexClient, geminiEmbedder, extractor, resolver, ingCfg)

	answerService := services.NewAnswerService(indexClient, geminiEmbedder, llmProvider)

	server := NewServer(cfg, indexClient, archiveClient, docIngestor, answerService)

	return &App{Index: indexClient, Archive: archiveClient, Ingestor: docIngestor, Server: server}, nil
}

func (a *App) Close() {
	if a.Index != nil {
		_ = a.Index.Close()
	}
}
