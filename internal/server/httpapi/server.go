// Package httpapi exposes the roster collections over a JSON REST API.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"rosterkeeper/internal/logging"
	"rosterkeeper/internal/server/config"
	"rosterkeeper/internal/server/repositories/repomanager"
)

// Server bundles the handlers with their dependencies.
type Server struct {
	cfg    *config.Config
	repos  repomanager.Manager
	logger logging.Logger
}

func NewServer(cfg *config.Config, repos repomanager.Manager, logger logging.Logger) *Server {
	return &Server{cfg: cfg, repos: repos, logger: logger}
}

// Routes builds the router. Collection endpoints keep their trailing
// slash so list and create live at /api/groups/ and /api/users/.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/api/ping", s.handlePing)
	r.Post("/api/auth/register", s.handleRegister)
	r.Post("/api/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Route("/api/groups", func(r chi.Router) {
			r.Get("/", s.handleGroupList)
			r.Post("/", s.handleGroupCreate)
			r.Put("/{id}", s.handleGroupUpdate)
			r.Delete("/{id}", s.handleGroupDelete)
		})

		r.Route("/api/users", func(r chi.Router) {
			r.Get("/", s.handleUserList)
			r.Post("/", s.handleUserCreate)
			r.Put("/{id}", s.handleUserUpdate)
			r.Delete("/{id}", s.handleUserDelete)
		})
	})

	return r
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
