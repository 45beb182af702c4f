package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"taskboard/internal/events"
	"taskboard/internal/metrics"
	"taskboard/internal/models"
	"taskboard/internal/store"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	store store.Store
	pub   events.Publisher
	now   func() time.Time
	log   *slog.Logger
}

// New creates a new Handlers instance. A nil publisher discards events.
func New(s store.Store, pub events.Publisher, now func() time.Time, log *slog.Logger) *Handlers {
	if pub == nil {
		pub = discard{}
	}
	if now == nil {
		now = time.Now
	}
	return &Handlers{
		store: s,
		pub:   pub,
		now:   now,
		log:   log,
	}
}

type discard struct{}

func (discard) Publish(events.Event) {}

// Routes registers the API on r.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", h.Dashboard)
		r.Get("/stats", h.Stats)
		r.Get("/export", h.Export)

		r.Get("/tasks", h.ListTasks)
		r.Post("/tasks", h.CreateTask)
		r.Get("/tasks/urgent", h.UrgentTasks)
		r.Get("/tasks/{id}", h.GetTask)
		r.Put("/tasks/{id}", h.UpdateTask)
		r.Delete("/tasks/{id}", h.DeleteTask)
		r.Post("/tasks/{id}/toggle", h.ToggleTask)
	})
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// parseID extracts and parses an integer ID from URL parameters.
func parseID(r *http.Request, param string) (int64, error) {
	idStr := chi.URLParam(r, param)
	return strconv.ParseInt(idStr, 10, 64)
}

func respondJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}

func (h *Handlers) respondServerError(w http.ResponseWriter, err error) {
	h.log.Error("internal server error", "err", err)
	respondError(w, http.StatusInternalServerError, "internal server error")
}

// respondStoreError maps domain errors to status codes.
func (h *Handlers) respondStoreError(w http.ResponseWriter, err error) {
	var (
		vErr  *models.ValidationError
		nfErr *models.NotFoundError
	)
	switch {
	case errors.As(err, &vErr):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": vErr.Message, "field": vErr.Field})
	case errors.As(err, &nfErr):
		respondError(w, http.StatusNotFound, "task not found")
	default:
		h.respondServerError(w, err)
	}
}

// publishChange records a mutation and tells subscribers to re-render.
func (h *Handlers) publishChange(ctx context.Context, op string, id int64) {
	metrics.TaskMutations.WithLabelValues(op).Inc()

	stats, err := h.store.Stats(ctx)
	if err != nil {
		h.log.Error("failed to compute stats after mutation", "op", op, "err", err)
		return
	}
	metrics.ObserveStats(stats)

	h.log.Debug("task mutated", "op", op, "task_id", id)
	h.pub.Publish(events.Event{
		Type:   events.TypeTasksChanged,
		Op:     op,
		TaskID: id,
		Stats:  &stats,
		At:     h.now(),
	})
}
