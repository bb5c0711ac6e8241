package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/primetrade/taskapi/internal/auth"
	"github.com/primetrade/taskapi/internal/models"
)

// AdminHandler serves the admin-only aggregate views. Role enforcement
// happens in the RequireAdmin middleware; per-target rules (like the
// self-deletion ban) are checked here.
type AdminHandler struct {
	users UserStore
	tasks TaskStore
}

func NewAdminHandler(users UserStore, tasks TaskStore) *AdminHandler {
	return &AdminHandler{users: users, tasks: tasks}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}
	if users == nil {
		users = []models.PublicUser{}
	}
	writeJSON(w, http.StatusOK, users)
}

// DeleteUser removes an account. Admins cannot delete themselves; that
// would allow the last admin to lock everyone out.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgTokenRequired)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, msgUserNotFound)
		return
	}

	if !auth.CanDeleteUser(identity, id).Allowed() {
		writeError(w, http.StatusBadRequest, msgSelfDelete)
		return
	}

	deleted, err := h.users.DeleteByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, msgUserNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func (h *AdminHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.FetchAllWithOwners()
	if err != nil {
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}
	if tasks == nil {
		tasks = []models.TaskWithOwner{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// DeleteTask removes any user's task, bypassing ownership.
func (h *AdminHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, msgTaskNotFound)
		return
	}

	deleted, err := h.tasks.Delete(id, 0, true)
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
