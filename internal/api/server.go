// Package api exposes the HTTP interface for the image pipeline service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/campusmatch/image-pipeline/internal/metrics"
	"github.com/campusmatch/image-pipeline/internal/pipeline"
)

// batchTimeout bounds one synchronous batch request. Batches run entities
// sequentially with throttle sleeps, so this is deliberately generous.
const batchTimeout = 30 * time.Minute

// BatchRunner runs a batch of entities and returns aggregate stats.
type BatchRunner interface {
	Run(ctx context.Context, opts pipeline.BatchOptions) (pipeline.BatchStats, error)
}

// EntityProcessor processes a single entity and cleans up its stored objects.
type EntityProcessor interface {
	Process(ctx context.Context, entity pipeline.Entity) pipeline.Outcome
	DeleteImages(ctx context.Context, entity pipeline.Entity) bool
}

// Kind bundles the pipeline components for one entity kind, keyed by its URL
// segment ("institutions" or "scholarships").
type Kind struct {
	Batch     BatchRunner
	Processor EntityProcessor
	Store     pipeline.EntityStore
}

// Server wires HTTP handlers to the per-kind pipelines.
type Server struct {
	router chi.Router
	kinds  map[string]Kind
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(kinds map[string]Kind, logger *zap.Logger) *Server {
	s := &Server{
		kinds:  kinds,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metricsMiddleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		for segment := range kinds {
			segment := segment
			r.Route("/"+segment, func(r chi.Router) {
				r.Post("/batch", s.runBatch(segment))
				r.Get("/stats", s.getStats(segment))
				r.Route("/{id}", func(r chi.Router) {
					r.Post("/extract", s.extractOne(segment))
					r.Delete("/images", s.deleteImages(segment))
				})
			})
		}
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// runBatch processes a set of entities synchronously and returns the stats.
func (s *Server) runBatch(segment string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := s.kinds[segment]

		var opts pipeline.BatchOptions
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
				s.writeError(w, http.StatusBadRequest, "invalid JSON")
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), batchTimeout)
		defer cancel()

		stats, err := kind.Batch.Run(ctx, opts)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, stats)
	}
}

// extractOne runs the full pipeline for a single entity by ID.
func (s *Server) extractOne(segment string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := s.kinds[segment]
		id, ok := s.parseID(w, r)
		if !ok {
			return
		}
		entity, err := kind.Store.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, http.StatusNotFound, "entity not found")
			return
		}
		outcome := kind.Processor.Process(r.Context(), entity)
		s.writeJSON(w, http.StatusOK, outcome)
	}
}

// deleteImages removes the entity's stored objects and resets its image fields.
func (s *Server) deleteImages(segment string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := s.kinds[segment]
		id, ok := s.parseID(w, r)
		if !ok {
			return
		}
		entity, err := kind.Store.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, http.StatusNotFound, "entity not found")
			return
		}
		kind.Processor.DeleteImages(r.Context(), entity)
		if err := kind.Store.ClearImages(r.Context(), id); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"entity_id": id, "status": string(pipeline.StatusPending)})
	}
}

// getStats reports row counts per extraction status.
func (s *Server) getStats(segment string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := s.kinds[segment]
		stats, err := kind.Store.Stats(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid entity id")
		return 0, false
	}
	return id, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
