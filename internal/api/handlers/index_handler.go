package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/docuqa/docuqa/internal/core"
	"github.com/docuqa/docuqa/internal/models"
)

type IndexHandler struct {
	index      core.SearchIndexClient
	defaultDim int
}

func NewIndexHandler(index core.SearchIndexClient, defaultDim int) *IndexHandler {
	if defaultDim <= 0 {
		defaultDim = 1536
	}
	return &IndexHandler{index: index, defaultDim: defaultDim}
}

// CreateIndex provisions a new vector index. The dimension is fixed at
// creation; omitting it picks the configured embedding dimension.
func (h *IndexHandler) CreateIndex(w http.ResponseWriter, r *http.Request) {
	var req models.CreateIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.IndexName) == "" {
		http.Error(w, "index_name is required", http.StatusBadRequest)
		return
	}
	dim := req.VectorDimension
	if dim <= 0 {
		dim = h.defaultDim
	}

	if err := h.index.CreateIndex(r.Context(), req.IndexName, dim); err != nil {
		http.Error(w, fmt.Sprintf("create index failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":     "success",
		"index_name": req.IndexName,
	})
}

// DeleteIndex removes an index. Deleting a missing index is a no-op.
func (h *IndexHandler) DeleteIndex(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.IndexName) == "" {
		http.Error(w, "index_name is required", http.StatusBadRequest)
		return
	}

	if err := h.index.DeleteIndex(r.Context(), req.IndexName); err != nil {
		http.Error(w, fmt.Sprintf("delete index failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":     "success",
		"index_name": req.IndexName,
		"message":    "Index deleted successfully.",
	})
}
