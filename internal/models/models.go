package models

import (
	"time"
)

// QuestionRequest is the body of POST /ask.
type QuestionRequest struct {
	Question  string `json:"question"`
	IndexName string `json:"index_name"`
	TopK      int    `json:"top_k"`
}

// CreateIndexRequest is the body of POST /create-index.
type CreateIndexRequest struct {
	IndexName       string `json:"index_name"`
	VectorDimension int    `json:"vector_dimension"`
}

// DeleteIndexRequest is the body of DELETE /delete-index.
type DeleteIndexRequest struct {
	IndexName string `json:"index_name"`
}

// IndexRecord is one embeddable chunk as stored in a search index.
// Every record in a given index carries a vector of the dimension the
// index was created with.
type IndexRecord struct {
	ID            string    `db:"id" json:"id"`
	TextContent   string    `db:"textual_content" json:"textual_content"`
	ContentVector []float32 `db:"content_vector" json:"content_vector"`
	Library       string    `db:"library" json:"library"`
	CreatedDate   time.Time `db:"created_date" json:"created_date"`
	Title         string    `db:"title" json:"title"`
	Source        string    `db:"source" json:"source"`
}

// SearchResult is one ranked hit returned from the index.
type SearchResult struct {
	ID          string    `json:"id"`
	TextContent string    `json:"textual_content"`
	Title       string    `json:"title"`
	Library     string    `json:"library"`
	Source      string    `json:"source"`
	CreatedDate time.Time `json:"created_date"`
	Score       float64   `json:"score"`
}
