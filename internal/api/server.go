package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/velours-studio/reflet/internal/memory"
	"github.com/velours-studio/reflet/internal/orchestrator"
)

type Server struct {
	router *chi.Mux
	port   int
	orch   *orchestrator.Orchestrator
	memory *memory.Store
}

func NewServer(port int, apiToken string, orch *orchestrator.Orchestrator, mem *memory.Store) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		orch:   orch,
		memory: mem,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/reflet/status", s.status)
	router.Get("/api/v1/report", s.report)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/conversations", s.processConversation)
		r.Post("/feedback/trigger", s.triggerFeedback)
		r.Post("/feedback/{sessionID}", s.answerFeedback)
		r.Get("/profiles/{userID}", s.getProfile)
		r.Get("/conversations/{userID}", s.conversationHistory)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// BearerAuthMiddleware rejects requests without the configured token. An
// empty token disables the check.
func BearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":  "reflet",
		"status": "active",
		"state":  s.orch.Status(),
	})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
