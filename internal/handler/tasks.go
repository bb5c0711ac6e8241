package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/primetrade/taskapi/internal/auth"
	"github.com/primetrade/taskapi/internal/models"
)

// TaskStore is the slice of the task store the handlers need.
type TaskStore interface {
	Create(ownerID int64, title, description, status string) (*models.Task, error)
	FetchForOwner(ownerID int64, search, status string) ([]models.Task, error)
	Update(id, ownerID int64, title, description, status string) (bool, error)
	Delete(id, ownerID int64, isAdmin bool) (bool, error)
	FetchAllWithOwners() ([]models.TaskWithOwner, error)
}

type TaskHandler struct {
	tasks TaskStore
}

func NewTaskHandler(tasks TaskStore) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func taskID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// List returns the caller's tasks, newest first, optionally narrowed by
// a title search and an exact status. Both filters must match when both
// are given.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgTokenRequired)
		return
	}

	search := r.URL.Query().Get("search")
	status := r.URL.Query().Get("status")
	if status != "" && !models.ValidStatus(status) {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	tasks, err := h.tasks.FetchForOwner(identity.UserID, search, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	writeJSON(w, http.StatusOK, tasks)
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func (req *taskRequest) validate(w http.ResponseWriter) bool {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return false
	}
	if req.Status != "" && !models.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return false
	}
	return true
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgTokenRequired)
		return
	}

	var req taskRequest
	if !decodeJSON(w, r, &req) || !req.validate(w) {
		return
	}

	task, err := h.tasks.Create(identity.UserID, req.Title, req.Description, req.Status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create task")
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// Update rewrites one of the caller's tasks. A task that does not exist
// and a task owned by someone else are both 404, so other users' task
// ids cannot be probed.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgTokenRequired)
		return
	}

	id, ok := taskID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgTaskNotFound)
		return
	}

	var req taskRequest
	if !decodeJSON(w, r, &req) || !req.validate(w) {
		return
	}
	if req.Status == "" {
		req.Status = models.StatusPending
	}

	updated, err := h.tasks.Update(id, identity.UserID, req.Title, req.Description, req.Status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update task")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, msgTaskNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Task updated successfully"})
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgTokenRequired)
		return
	}

	id, ok := taskID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgTaskNotFound)
		return
	}

	//admins may delete anyone's task, here as on the admin route
	isAdmin := auth.CanAdministrate(identity).Allowed()
	deleted, err := h.tasks.Delete(id, identity.UserID, isAdmin)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete task")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, msgTaskNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}
