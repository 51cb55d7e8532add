package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/cartridge/pacman/internal/actor"
	"github.com/cartridge/pacman/internal/storage"
)

// Server wires the admin HTTP handlers to the actor.
type Server struct {
	actor  *actor.Actor
	logger zerolog.Logger
}

// NewServer constructs a Server instance.
func NewServer(a *actor.Actor, logger zerolog.Logger) *Server {
	return &Server{actor: a, logger: logger}
}

// Routes builds the HTTP router for the admin API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.logger))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/agents", s.handleAgents)
		r.Get("/stats", s.handleStats)
		r.Get("/episodes/{episodeID}/trace", s.handleTrace)
		r.Delete("/episodes/{episodeID}/trace", s.handlePurgeTrace)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"active_episodes": s.actor.ActiveEpisodes(),
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"agents": s.actor.Agents()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.actor.Stats(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	episodeID := chi.URLParam(r, "episodeID")
	transitions, err := s.actor.Trace(r.Context(), episodeID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"episode_id":  episodeID,
		"transitions": transitions,
	})
}

func (s *Server) handlePurgeTrace(w http.ResponseWriter, r *http.Request) {
	episodeID := chi.URLParam(r, "episodeID")
	removed, err := s.actor.PurgeTrace(r.Context(), episodeID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"episode_id": episodeID,
		"removed":    removed,
	})
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, actor.ErrEpisodeNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}
