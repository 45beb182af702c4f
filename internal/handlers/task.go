package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"taskboard/internal/models"
)

// TaskView is a task plus the values derived for display.
type TaskView struct {
	models.Task
	DeadlineLabel string `json:"deadline_label"`
	Urgent        bool   `json:"urgent"`
	Overdue       bool   `json:"overdue"`
}

func newTaskView(t models.Task, now time.Time) TaskView {
	return TaskView{
		Task:          t,
		DeadlineLabel: models.RelativeLabel(t.Deadline, now),
		Urgent:        models.IsUrgent(t, now),
		Overdue:       t.IsOverdue(now),
	}
}

func newTaskViews(tasks []models.Task, now time.Time) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, newTaskView(t, now))
	}
	return views
}

// TaskList is the response body of a listing.
type TaskList struct {
	Tasks      []TaskView `json:"tasks"`
	Count      int        `json:"count"`
	CountLabel string     `json:"count_label"`
}

func newTaskList(tasks []models.Task, now time.Time) TaskList {
	return TaskList{
		Tasks:      newTaskViews(tasks, now),
		Count:      len(tasks),
		CountLabel: countLabel(len(tasks)),
	}
}

func countLabel(n int) string {
	if n == 1 {
		return "1 task"
	}
	return fmt.Sprintf("%d tasks", n)
}

// decodeTaskFields reads task fields from a JSON body or a form.
func decodeTaskFields(r *http.Request) (models.TaskFields, error) {
	var fields models.TaskFields

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			return fields, errors.New("invalid json")
		}
		return fields, nil
	}

	if err := r.ParseForm(); err != nil {
		return fields, errors.New("invalid form data")
	}
	fields = models.TaskFields{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Priority:    models.Priority(r.FormValue("priority")),
		Deadline:    models.Date(r.FormValue("deadline")),
	}
	return fields, nil
}

// parseListQuery reads the filter and sort key, defaulting to all/all/all/deadline.
func parseListQuery(r *http.Request) (models.Filter, models.SortKey, error) {
	q := r.URL.Query()

	filter := models.Filter{
		Category: q.Get("category"),
		Priority: models.Priority(q.Get("priority")),
		Status:   models.Status(strings.ToLower(q.Get("status"))),
	}
	switch filter.Status {
	case "":
		filter.Status = models.StatusAny
	case models.StatusAny, models.StatusCompleted, models.StatusPending:
	default:
		return filter, "", errors.New("status must be 'all', 'completed', or 'pending'")
	}

	sortKey := models.SortKey(q.Get("sort"))
	if sortKey == "" {
		sortKey = models.SortByDeadline
	}

	return filter, sortKey, nil
}

// ListTasks returns the filtered and sorted task list.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

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

	respondJSON(w, http.StatusOK, newTaskList(tasks, h.now()))
}

// UrgentTasks returns open tasks due within the next 24 hours.
func (h *Handlers) UrgentTasks(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	tasks, err := h.store.UrgentTasks(r.Context(), now)
	if err != nil {
		h.respondServerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newTaskList(tasks, now))
}

// GetTask returns a single task.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := h.store.GetTask(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newTaskView(*task, h.now()))
}

// CreateTask creates a new task.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	fields, err := decodeTaskFields(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.store.AddTask(ctx, fields)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	h.publishChange(ctx, "add", task.ID)
	respondJSON(w, http.StatusCreated, newTaskView(*task, h.now()))
}

// UpdateTask updates an existing task.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	fields, err := decodeTaskFields(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.store.UpdateTask(ctx, id, fields)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	h.publishChange(ctx, "update", task.ID)
	respondJSON(w, http.StatusOK, newTaskView(*task, h.now()))
}

// DeleteTask deletes a task. Deleting a missing task succeeds without effect.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	_, lookupErr := h.store.GetTask(ctx, id)

	if err := h.store.DeleteTask(ctx, id); err != nil {
		h.respondServerError(w, err)
		return
	}

	if lookupErr == nil {
		h.publishChange(ctx, "delete", id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleTask toggles the completion status of a task and returns it.
func (h *Handlers) ToggleTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := h.store.ToggleTaskComplete(ctx, id); err != nil {
		h.respondServerError(w, err)
		return
	}

	task, err := h.store.GetTask(ctx, id)
	if err != nil {
		var nfErr *models.NotFoundError
		if errors.As(err, &nfErr) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.respondServerError(w, err)
		return
	}

	h.publishChange(ctx, "toggle", id)
	respondJSON(w, http.StatusOK, newTaskView(*task, h.now()))
}
