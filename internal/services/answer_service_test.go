package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuqa/docuqa/internal/models"
)

type stubIndex struct {
	results   []models.SearchResult
	searchErr error

	gotIndex string
	gotTopK  int
	gotVec   []float32
}

func (s *stubIndex) CreateIndex(ctx context.Context, indexName string, vectorDimension int) error {
	return nil
}
func (s *stubIndex) DeleteIndex(ctx context.Context, indexName string) error { return nil }
func (s *stubIndex) UploadRecords(ctx context.Context, indexName string, records []models.IndexRecord, batchSize int) error {
	return nil
}
func (s *stubIndex) Search(ctx context.Context, indexName string, queryVector []float32, topK int, libraryFilter string) ([]models.SearchResult, error) {
	s.gotIndex = indexName
	s.gotTopK = topK
	s.gotVec = queryVector
	return s.results, s.searchErr
}
func (s *stubIndex) Close() error { return nil }

type stubEmbedder struct{ err error }

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

type stubLLM struct {
	answer    string
	gotPrompt string
	err       error
}

func (s *stubLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.gotPrompt = userPrompt
	return s.answer, s.err
}

func TestAnswerBuildsPromptFromSearchResults(t *testing.T) {
	index := &stubIndex{results: []models.SearchResult{
		{TextContent: "the deadline is March 1"},
		{TextContent: "penalties apply after 30 days"},
	}}
	llm := &stubLLM{answer: "March 1"}
	svc := NewAnswerService(index, &stubEmbedder{}, llm)

	answer, err := svc.Answer(context.Background(), "When is the deadline?", "contracts", 3)
	require.NoError(t, err)
	assert.Equal(t, "March 1", answer)

	assert.Equal(t, "contracts", index.gotIndex)
	assert.Equal(t, 3, index.gotTopK)
	assert.NotEmpty(t, index.gotVec)

	assert.Contains(t, llm.gotPrompt, "the deadline is March 1 penalties apply after 30 days")
	assert.Contains(t, llm.gotPrompt, "Question: When is the deadline?")
	assert.Contains(t, llm.gotPrompt, "Answer:")
}

func TestAnswerDefaultsTopK(t *testing.T) {
	index := &stubIndex{}
	svc := NewAnswerService(index, &stubEmbedder{}, &stubLLM{answer: "ok"})

	_, err := svc.Answer(context.Background(), "anything?", "contracts", 0)
	require.NoError(t, err)
	assert.Equal(t, 5, index.gotTopK)
}

func TestAnswerRejectsEmptyQuestion(t *testing.T) {
	svc := NewAnswerService(&stubIndex{}, &stubEmbedder{}, &stubLLM{})
	_, err := svc.Answer(context.Background(), "   ", "contracts", 5)
	require.Error(t, err)
}

func TestAnswerPropagatesFailures(t *testing.T) {
	t.Run("embedding", func(t *testing.T) {
		svc := NewAnswerService(&stubIndex{}, &stubEmbedder{err: fmt.Errorf("quota")}, &stubLLM{})
		_, err := svc.Answer(context.Background(), "q?", "contracts", 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding question")
	})

	t.Run("search", func(t *testing.T) {
		svc := NewAnswerService(&stubIndex{searchErr: fmt.Errorf("down")}, &stubEmbedder{}, &stubLLM{})
		_, err := svc.Answer(context.Background(), "q?", "contracts", 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "searching contracts")
	})

	t.Run("llm", func(t *testing.T) {
		svc := NewAnswerService(&stubIndex{}, &stubEmbedder{}, &stubLLM{err: fmt.Errorf("model error")})
		_, err := svc.Answer(context.Background(), "q?", "contracts", 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "generating answer")
	})
}
