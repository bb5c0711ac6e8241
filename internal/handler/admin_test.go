package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primetrade/taskapi/internal/models"
)

func TestAdmin_RequiresRole(t *testing.T) {
	e := newEnv()
	user, _ := e.register(t, "Alice", "a@x.com", "secret1", "")

	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/api/admin/users"},
		{http.MethodDelete, "/api/admin/users/1"},
		{http.MethodGet, "/api/admin/tasks"},
		{http.MethodDelete, "/api/admin/tasks/1"},
	} {
		rec := e.do(t, req.method, req.path, user, "")
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", req.method, req.path)
	}

	//and a token at all
	rec := e.do(t, http.MethodGet, "/api/admin/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmin_ListUsers(t *testing.T) {
	e := newEnv()
	e.register(t, "Alice", "a@x.com", "secret1", "")
	admin, _ := e.register(t, "Root", "root@x.com", "secret1", "admin")

	rec := e.do(t, http.MethodGet, "/api/admin/users", admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	users := decodeBody[[]models.PublicUser](t, rec)

	//newest first
	require.Len(t, users, 2)
	assert.Equal(t, "root@x.com", users[0].Email)
	assert.Equal(t, "a@x.com", users[1].Email)
}

func TestAdmin_DeleteUser(t *testing.T) {
	e := newEnv()
	_, alice := e.register(t, "Alice", "a@x.com", "secret1", "")
	admin, adminUser := e.register(t, "Root", "root@x.com", "secret1", "admin")

	//self-deletion is blocked so admins cannot lock themselves out
	rec := e.do(t, http.MethodDelete, "/api/admin/users/2", admin, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	_, err := e.users.FindByID(adminUser.ID)
	assert.NoError(t, err)

	rec = e.do(t, http.MethodDelete, "/api/admin/users/1", admin, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	_, err = e.users.FindByID(alice.ID)
	assert.Error(t, err)

	//already gone
	rec = e.do(t, http.MethodDelete, "/api/admin/users/1", admin, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmin_ListTasksWithOwners(t *testing.T) {
	e := newEnv()
	alice, _ := e.register(t, "Alice", "a@x.com", "secret1", "")
	bob, _ := e.register(t, "Bob", "b@x.com", "secret1", "")
	admin, _ := e.register(t, "Root", "root@x.com", "secret1", "admin")

	e.do(t, http.MethodPost, "/api/tasks", alice, `{"title":"alice task"}`)
	e.do(t, http.MethodPost, "/api/tasks", bob, `{"title":"bob task"}`)

	rec := e.do(t, http.MethodGet, "/api/admin/tasks", admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decodeBody[[]models.TaskWithOwner](t, rec)

	//every user's tasks, newest first, each with its owner attached
	require.Len(t, tasks, 2)
	assert.Equal(t, "bob task", tasks[0].Title)
	assert.Equal(t, "Bob", tasks[0].UserName)
	assert.Equal(t, "b@x.com", tasks[0].UserEmail)
	assert.Equal(t, "alice task", tasks[1].Title)
	assert.Equal(t, "Alice", tasks[1].UserName)
}

func TestUnknownRoute(t *testing.T) {
	e := newEnv()
	rec := e.do(t, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Route not found"}`, rec.Body.String())
}
