package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/docuqa/docuqa/internal/models"
	"github.com/docuqa/docuqa/internal/services"
)

type AskHandler struct {
	answers *services.AnswerService
}

func NewAskHandler(answers *services.AnswerService) *AskHandler {
	return &AskHandler{answers: answers}
}

// Ask answers a question against an existing index.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.IndexName) == "" {
		http.Error(w, "index_name is required", http.StatusBadRequest)
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = 5
	}

	answer, err := h.answers.Answer(r.Context(), req.Question, req.IndexName, topK)
	if err != nil {
		http.Error(w, fmt.Sprintf("answering failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"question": req.Question,
		"answer":   answer,
	})
}
