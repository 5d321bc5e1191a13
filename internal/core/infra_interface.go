package core

import (
	"context"

	"github.com/docuqa/docuqa/internal/models"
)

// SearchIndexClient defines all index operations the services need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific
// vector database.
type SearchIndexClient interface {
	CreateIndex(ctx context.Context, indexName string, vectorDimension int) error
	DeleteIndex(ctx context.Context, indexName string) error

	// UploadRecords inserts the full batch transactionally, issuing inserts
	// in groups of batchSize.
	UploadRecords(ctx context.Context, indexName string, records []models.IndexRecord, batchSize int) error

	// Search returns the topK records closest to queryVector, optionally
	// restricted to one library.
	Search(ctx context.Context, indexName string, queryVector []float32, topK int, libraryFilter string) ([]models.SearchResult, error)

	Close() error
}

// ArchiveClient defines interactions with S3 or any object storage used to
// keep a copy of the raw uploaded files. Purely optional: the pipeline never
// reads archived objects back.
type ArchiveClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
}
