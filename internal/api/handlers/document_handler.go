package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/docuqa/docuqa/internal/core"
	"github.com/docuqa/docuqa/internal/core/ingestion_engine"
)

type DocumentHandler struct {
	ingestor      ingestion_engine.Ingestor
	archive       core.ArchiveClient
	archiveBucket string
}

func NewDocumentHandler(ing ingestion_engine.Ingestor, archive core.ArchiveClient, archiveBucket string) *DocumentHandler {
	return &DocumentHandler{ingestor: ing, archive: archive, archiveBucket: archiveBucket}
}

// UploadDocument accepts a multipart upload, runs it through the ingestion
// pipeline, and reports how many chunks were indexed.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {

	if err := r.ParseMultipartForm(52 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid multipart body: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	indexName := r.FormValue("index_name")
	if indexName == "" {
		http.Error(w, "index_name is required", http.StatusBadRequest)
		return
	}

	mode, err := ingestion_engine.ParseMode(r.FormValue("processing_mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hint := r.FormValue("additional_information")
	library := r.FormValue("library_name")
	if library == "" {
		library = "default"
	}

	// The extractor dispatches on the file extension, so the upload is
	// staged on disk under its original name.
	cleanFilename := filepath.Base(header.Filename)
	tmpDir, err := os.MkdirTemp("", "docuqa-upload-")
	if err != nil {
		http.Error(w, fmt.Sprintf("staging upload failed: %v", err), http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tmpDir)

	localPath := filepath.Join(tmpDir, cleanFilename)
	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("reading upload failed: %v", err), http.StatusInternalServerError)
		return
	}
	if err := os.WriteFile(localPath, data, 0o600); err != nil {
		http.Error(w, fmt.Sprintf("staging upload failed: %v", err), http.StatusInternalServerError)
		return
	}

	ingestCtx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	if h.archive != nil && h.archiveBucket != "" {
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		key := fmt.Sprintf("%s/%s/%s", indexName, uuid.NewString(), cleanFilename)
		if _, err := h.archive.UploadFile(ingestCtx, h.archiveBucket, key, data, contentType); err != nil {
			log.Printf("archiving %s failed: %v", cleanFilename, err)
		}
	}

	count, err := h.ingestor.Ingest(ingestCtx, indexName, localPath, mode, hint, library)
	if err != nil {
		switch {
		case errors.Is(err, ingestion_engine.ErrUnsupportedFormat):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, fmt.Sprintf("ingestion failed: %v", err), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":          "success",
		"file_name":       cleanFilename,
		"index_name":      indexName,
		"chunks_indexed":  count,
		"processing_mode": string(mode),
		"indexed_at":      time.Now().UTC().Format(time.RFC3339),
	})
}
