package searchindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/docuqa/docuqa/internal/config"
	"github.com/docuqa/docuqa/internal/core"
	"github.com/docuqa/docuqa/internal/models"
)

// Client implements core.SearchIndexClient on Postgres + pgvector.
// Each index maps to one table whose vector column is fixed to the
// dimension the index was created with.
type Client struct {
	db *sql.DB
}

// indexNamePattern keeps index names safe for use as SQL identifiers.
var indexNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,62}$`)

func NewClient(ctx context.Context, cfg *config.Config) (core.SearchIndexClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("search index client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	dsn := cfg.DatabaseURL
	if cfg.SslCertPath != "" {
		u, err := url.Parse(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		q := u.Query()
		q.Set("sslmode", "verify-ca")
		q.Set("sslrootcert", cfg.SslCertPath)
		u.RawQuery = q.Encode()
		dsn = u.String()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := ensureVectorExtension(pingCtx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &Client{db: db}, nil
}

// ensureVectorExtension makes sure pgvector is available before any index
// table is created.
func ensureVectorExtension(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`)
	return err
}

func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// CreateIndex creates the per-index table plus an HNSW cosine index over the
// vector column. The HNSW parameters mirror the profile the service has
// always used (m=4, ef_construction=400).
func (c *Client) CreateIndex(ctx context.Context, indexName string, vectorDimension int) error {
	ident, err := indexIdent(indexName)
	if err != nil {
		return err
	}
	if vectorDimension <= 0 {
		return fmt.Errorf("vector dimension must be positive, got %d", vectorDimension)
	}

	log.Printf("searchindex: creating index %q (dim=%d)", indexName, vectorDimension)

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id              text PRIMARY KEY,
			textual_content text NOT NULL,
			content_vector  vector(%d) NOT NULL,
			library         text,
			created_date    timestamptz NOT NULL DEFAULT now(),
			title           text,
			source          text
		)`, ident, vectorDimension)
	if _, err := c.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("create index table %q: %w", indexName, err)
	}

	createHnsw := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s ON %s
		USING hnsw (content_vector vector_cosine_ops)
		WITH (m = 4, ef_construction = 400)`,
		quoteIdent(indexName+"_content_vector_hnsw"), ident)
	if _, err := c.db.ExecContext(ctx, createHnsw); err != nil {
		return fmt.Errorf("create hnsw index for %q: %w", indexName, err)
	}

	log.Printf("searchindex: index %q ready", indexName)
	return nil
}

// DeleteIndex drops the index table. A missing index is logged, not an error,
// matching delete semantics of managed search services.
func (c *Client) DeleteIndex(ctx context.Context, indexName string) error {
	ident, err := indexIdent(indexName)
	if err != nil {
		return err
	}

	exists, err := c.indexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("check index %q: %w", indexName, err)
	}
	if !exists {
		log.Printf("searchindex: index %q not found, nothing to delete", indexName)
		return nil
	}

	if _, err := c.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE %s`, ident)); err != nil {
		return fmt.Errorf("drop index %q: %w", indexName, err)
	}
	log.Printf("searchindex: index %q deleted", indexName)
	return nil
}

// indexExistsQuery is scoped to the connection's schema so a same-named
// table elsewhere cannot shadow the answer.
const indexExistsQuery = `
	SELECT EXISTS (
	  SELECT 1 FROM information_schema.tables
	  WHERE table_schema = current_schema() AND table_name = $1
	)`

func (c *Client) indexExists(ctx context.Context, indexName string) (bool, error) {
	var exists bool
	err := c.db.QueryRowContext(ctx, indexExistsQuery, indexName).Scan(&exists)
	return exists, err
}

// UploadRecords inserts the whole batch in one transaction, issuing inserts
// in groups of batchSize. Either every record lands or none do.
func (c *Client) UploadRecords(ctx context.Context, indexName string, records []models.IndexRecord, batchSize int) error {
	ident, err := indexIdent(indexName)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	q := fmt.Sprintf(`
		INSERT INTO %s
			(id, textual_content, content_vector, library, created_date, title, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`, ident)
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		for j := i; j < end; j++ {
			rec := &records[j]
			vec := pgvector.NewVector(rec.ContentVector)
			if _, err := stmt.ExecContext(ctx,
				rec.ID, rec.TextContent, vec, rec.Library, rec.CreatedDate, rec.Title, rec.Source,
			); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("upload batch %d: %w", i/batchSize+1, err)
			}
		}
		log.Printf("searchindex: staged batch %d (%d records) for %q", i/batchSize+1, end-i, indexName)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upload to %q: %w", indexName, err)
	}
	log.Printf("searchindex: uploaded %d records to %q", len(records), indexName)
	return nil
}

// Search returns the topK closest records by cosine distance, optionally
// filtered to one library. Score is reported as cosine similarity.
func (c *Client) Search(ctx context.Context, indexName string, queryVector []float32, topK int, libraryFilter string) ([]models.SearchResult, error) {
	ident, err := indexIdent(indexName)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 5
	}

	vec := pgvector.NewVector(queryVector)

	q := fmt.Sprintf(`
		SELECT id, textual_content, title, library, source, created_date,
		       1 - (content_vector <=> $1) AS score
		FROM %s`, ident)
	args := []any{vec}
	if libraryFilter != "" {
		q += ` WHERE library = $2`
		args = append(args, libraryFilter)
	}
	q += fmt.Sprintf(` ORDER BY content_vector <=> $1 LIMIT %d`, topK)

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", indexName, err)
	}
	defer rows.Close()

	var out []models.SearchResult
	for rows.Next() {
		var (
			r       models.SearchResult
			library sql.NullString
			title   sql.NullString
			source  sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.TextContent, &title, &library, &source, &r.CreatedDate, &r.Score); err != nil {
			return nil, err
		}
		r.Library = library.String
		r.Title = title.String
		r.Source = source.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// indexIdent validates an index name and returns it quoted for interpolation
// into DDL/DML. Parameters cannot stand in for identifiers, so validation is
// the line of defense here.
func indexIdent(indexName string) (string, error) {
	if !indexNamePattern.MatchString(indexName) {
		return "", fmt.Errorf("invalid index name %q: %w", indexName, errInvalidIndexName)
	}
	return quoteIdent(indexName), nil
}

var errInvalidIndexName = errors.New("index name must be lowercase alphanumeric with dashes or underscores")

func quoteIdent(name string) string {
	return `"` + name + `"`
}
