package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/docuqa/docuqa/internal/core"
)

const answerPromptTemplate = "Answer the question based on the context below.\n\nContext:\n%s\n\nQuestion: %s\nAnswer:"

// AnswerService retrieves the chunks closest to a question and asks the
// language model to answer from them.
type AnswerService struct {
	index    core.SearchIndexClient
	embedder core.EmbeddingProvider
	llm      core.LLMProvider
}

func NewAnswerService(index core.SearchIndexClient, embedder core.EmbeddingProvider, llm core.LLMProvider) *AnswerService {
	return &AnswerService{index: index, embedder: embedder, llm: llm}
}

// Answer embeds the question, searches indexName for the topK closest
// chunks, and generates an answer grounded on their text.
func (s *AnswerService) Answer(ctx context.Context, question, indexName string, topK int) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question must not be empty")
	}
	if topK <= 0 {
		topK = 5
	}

	vecs, err := s.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return "", fmt.Errorf("embedding question: %w", err)
	}
	if len(vecs) == 0 {
		return "", fmt.Errorf("embedding question: no vector returned")
	}

	results, err := s.index.Search(ctx, indexName, vecs[0], topK, "")
	if err != nil {
		return "", fmt.Errorf("searching %s: %w", indexName, err)
	}

	var parts []string
	for _, res := range results {
		parts = append(parts, res.TextContent)
	}
	prompt := fmt.Sprintf(answerPromptTemplate, strings.Join(parts, " "), question)

	answer, err := s.llm.Generate(ctx, "", prompt)
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return answer, nil
}
