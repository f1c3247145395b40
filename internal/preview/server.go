package preview

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clipdeck/clipdeck/internal/config"
	"github.com/clipdeck/clipdeck/internal/playback"
)

type Server struct {
	httpServer *http.Server
	port       int
	logger     *slog.Logger
}

type ServerConfig struct {
	Port      int
	Cache     *Cache
	Media     playback.MediaService
	Logger    *slog.Logger
	StartTime time.Time
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		port:   cfg.Port,
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting preview server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down preview server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// SourceURL is the loopback URL the video player opens for a project's
// source media.
func (s *Server) SourceURL(projectID int64) string {
	return fmt.Sprintf("http://127.0.0.1:%d/media/%d/source", s.port, projectID)
}

func (s *Server) OutputURL(projectID int64) string {
	return fmt.Sprintf("http://127.0.0.1:%d/media/%d/output", s.port, projectID)
}

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Get("/media/{projectID}/source", mediaHandler(cfg, cfg.Cache.SourcePath))
	r.Get("/media/{projectID}/output", mediaHandler(cfg, cfg.Cache.OutputPath))

	return r
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, healthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

func mediaHandler(cfg ServerConfig, pathFor func(int64) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid project id")
			return
		}
		if err := cfg.Media.ServeFile(w, r, pathFor(projectID)); err != nil {
			requestID, _ := r.Context().Value(RequestIDKey).(string)
			cfg.Logger.Error("failed to serve media", "error", err, "project_id", projectID, "request_id", requestID)
			WriteError(w, http.StatusInternalServerError, "failed to serve media")
		}
	}
}
