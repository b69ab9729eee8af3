package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rgower/typeset/internal/config"
	"github.com/rgower/typeset/internal/pipeline"
)

// Server is the HTTP surface of the conversion service. Everything
// under /api requires the bearer API key; /health is open for probes.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
	cfg          config.Config
}

func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		log:          log,
		cfg:          cfg,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))

	r.Get("/health", handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.APIKey, log))

		r.Post("/convert", s.handleConvert)
		r.Post("/convert/batch", s.handleBatchConvert)
		r.Get("/convert/{jobID}/status", s.handleConvertStatus)
		r.Get("/convert/{jobID}/result", s.handleConvertResult)
		r.Get("/stats/llm", s.handleModelStats)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
