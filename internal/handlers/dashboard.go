package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"taskboard/internal/export"
	"taskboard/internal/models"
)

// DashboardData holds everything the task page renders in one pass.
type DashboardData struct {
	Title      string         `json:"title"`
	Stats      models.Stats   `json:"stats"`
	Urgent     []TaskView     `json:"urgent"`
	List       TaskList       `json:"list"`
	Filter     map[string]any `json:"filter"`
	Today      models.Date    `json:"today"`
	Categories []string       `json:"categories"`
}

// Dashboard returns stats, the urgent section and the filtered list together.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.now()

	filter, sortKey, err := parseListQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.store.Stats(ctx)
	if err != nil {
		h.respondServerError(w, err)
		return
	}

	urgent, err := h.store.UrgentTasks(ctx, now)
	if err != nil {
		h.respondServerError(w, err)
		return
	}

	tasks, err := h.store.ListTasks(ctx, filter, sortKey)
	if err != nil {
		h.respondServerError(w, err)
		return
	}

	data := DashboardData{
		Title:  "My Tasks",
		Stats:  stats,
		Urgent: newTaskViews(urgent, now),
		List:   newTaskList(tasks, now),
		Filter: map[string]any{
			"category": orAll(filter.Category),
			"priority": orAll(string(filter.Priority)),
			"status":   filter.Status,
			"sort":     sortKey,
		},
		Today:      models.DateOf(now),
		Categories: []string{
			models.CategoryStudy,
			models.CategoryCollege,
			models.CategoryProject,
			models.CategoryPersonal,
		},
	}

	respondJSON(w, http.StatusOK, data)
}

func orAll(v string) string {
	if strings.TrimSpace(v) == "" {
		return models.Any
	}
	return v
}

// Stats returns the collection counters.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.respondServerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Export downloads the filtered list as json, csv or pdf.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.now()

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatJSON
	}
	contentType, err := export.ContentType(format)
	if err != nil {
		respondError(w, http.StatusBadRequest, "format must be 'json', 'csv', or 'pdf'")
		return
	}

	filter, sortKey, err := parseListQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := h.store.ListTasks(ctx, filter, sortKey)
	if err != nil {
		h.respondServerError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, export.Report{
		Tasks: tasks,
		Stats: models.ComputeStats(tasks),
		Now:   now,
	}); err != nil {
		h.respondServerError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="tasks-%s.%s"`, models.DateOf(now), format))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
