package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/docuqa/docuqa/internal/api/handlers"
	"github.com/docuqa/docuqa/internal/config"
	"github.com/docuqa/docuqa/internal/core"
	ingestor "github.com/docuqa/docuqa/internal/core/ingestion_engine"
	"github.com/docuqa/docuqa/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, index core.SearchIndexClient, archive core.ArchiveClient, ing ingestor.Ingestor, answers *services.AnswerService) *Server {
	indexHandler := handlers.NewIndexHandler(index, cfg.EmbedDim)
	docHandler := handlers.NewDocumentHandler(ing, archive, cfg.ArchiveBucket)
	askHandler := handlers.NewAskHandler(answers)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Post("/create-index", indexHandler.CreateIndex)
	r.Delete("/delete-index", indexHandler.DeleteIndex)
	r.Post("/upload-document", docHandler.UploadDocument)
	r.Post("/ask", askHandler.Ask)

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
