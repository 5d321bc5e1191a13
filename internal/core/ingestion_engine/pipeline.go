package ingestion_engine

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docuqa/docuqa/internal/core"
	"github.com/docuqa/docuqa/internal/models"
)

// IngestConfig carries the chunking and upload knobs for a DocumentIngestor.
type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
}

func defaultIngestConfig() *IngestConfig {
	return &IngestConfig{ChunkSize: 2000, ChunkOverlap: 200, BatchSize: 100}
}

// Ingestor runs a document through extraction, chunking, embedding and
// indexing end to end.
type Ingestor interface {
	Ingest(ctx context.Context, indexName, filePath string, mode Mode, hint, library string) (int, error)
}

// DocumentIngestor is the production Ingestor. Its collaborators are
// injected so tests can swap in fakes.
type DocumentIngestor struct {
	index     core.SearchIndexClient
	embedder  core.EmbeddingProvider
	extractor *Extractor
	resolver  *ImageResolver
	cfg       *IngestConfig
}

func NewDocumentIngestor(index core.SearchIndexClient, embedder core.EmbeddingProvider, extractor *Extractor, resolver *ImageResolver, cfg *IngestConfig) *DocumentIngestor {
	if cfg == nil {
		cfg = defaultIngestConfig()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 2000
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &DocumentIngestor{
		index:     index,
		embedder:  embedder,
		extractor: extractor,
		resolver:  resolver,
		cfg:       cfg,
	}
}

var _ Ingestor = (*DocumentIngestor)(nil)

// Ingest extracts the document at filePath, flattens the extracted content
// into a single text, chunks and embeds it, and uploads the resulting
// records to indexName. It returns the number of records indexed. The whole
// run is all-or-nothing: a failure at any stage leaves the index untouched.
func (di *DocumentIngestor) Ingest(ctx context.Context, indexName, filePath string, mode Mode, hint, library string) (int, error) {
	fileName := filepath.Base(filePath)

	items, err := di.extractor.Extract(ctx, filePath, mode)
	if err != nil {
		return 0, fmt.Errorf("extracting %s: %w", fileName, err)
	}

	text, err := di.flatten(ctx, items, mode, hint, fileName)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(text) == "" {
		log.Printf("ingest: no textual content extracted from %s", fileName)
		return 0, nil
	}

	chunks, err := Chunk(text, di.cfg.ChunkSize, di.cfg.ChunkOverlap)
	if err != nil {
		return 0, fmt.Errorf("chunking %s: %w", fileName, err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	log.Printf("ingest: %s produced %d chunks", fileName, len(chunks))

	vectors, err := di.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embedding chunks of %s: %w", fileName, err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedding %s: got %d vectors for %d chunks", fileName, len(vectors), len(chunks))
	}

	now := time.Now().UTC().Truncate(time.Second)
	records := make([]models.IndexRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = models.IndexRecord{
			ID:            uuid.NewString(),
			TextContent:   chunk,
			ContentVector: vectors[i],
			Library:       library,
			CreatedDate:   now,
			Title:         fmt.Sprintf("%d - document: %s", i+1, fileName),
			Source:        "document_chunks",
		}
	}

	if err := di.index.UploadRecords(ctx, indexName, records, di.cfg.BatchSize); err != nil {
		return 0, fmt.Errorf("uploading records for %s: %w", fileName, err)
	}

	log.Printf("ingest: indexed %d records from %s into %s", len(records), fileName, indexName)
	return len(records), nil
}

// flatten turns the extracted items into one text. In normal mode the text
// items are joined directly; in quality mode every page image goes through
// the vision resolver first.
func (di *DocumentIngestor) flatten(ctx context.Context, items []ContentItem, mode Mode, hint, fileName string) (string, error) {
	if mode == ModeQuality {
		if di.resolver == nil {
			return "", fmt.Errorf("quality mode requested but no image resolver configured")
		}
		if hint == "" {
			hint = fileName
		}
		return di.resolver.Resolve(ctx, items, hint), nil
	}

	var parts []string
	for _, item := range items {
		if item.Kind == KindText {
			parts = append(parts, item.Payload)
		}
	}
	return strings.Join(parts, " "), nil
}
