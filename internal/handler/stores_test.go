package handler

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/primetrade/taskapi/internal/auth"
	"github.com/primetrade/taskapi/internal/models"
	"github.com/primetrade/taskapi/internal/repository"
)

// In-memory stores mirroring the repository semantics: unique emails,
// ownership-scoped writes, newest-first listings, conjunctive filters.

type fakeUserStore struct {
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: make(map[int64]*models.User)}
}

func (s *fakeUserStore) Create(name, email, passwordHash, role string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return nil, repository.ErrDuplicateEmail
		}
	}
	u := &models.User{
		ID:           s.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().Add(time.Duration(s.nextID) * time.Millisecond),
	}
	s.users[u.ID] = u
	s.nextID++
	return u, nil
}

func (s *fakeUserStore) FindByEmail(email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeUserStore) FindByID(id int64) (*models.PublicUser, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	pub := u.Public()
	return &pub, nil
}

func (s *fakeUserStore) UpdateName(id int64, name string) (bool, error) {
	u, ok := s.users[id]
	if !ok {
		return false, nil
	}
	u.Name = name
	return true, nil
}

func (s *fakeUserStore) ListAll() ([]models.PublicUser, error) {
	var users []models.PublicUser
	for _, u := range s.users {
		users = append(users, u.Public())
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (s *fakeUserStore) DeleteByID(id int64) (bool, error) {
	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	return true, nil
}

type fakeTaskStore struct {
	nextID int64
	tasks  map[int64]*models.Task
	users  *fakeUserStore
}

func newFakeTaskStore(users *fakeUserStore) *fakeTaskStore {
	return &fakeTaskStore{nextID: 1, tasks: make(map[int64]*models.Task), users: users}
}

func (s *fakeTaskStore) Create(ownerID int64, title, description, status string) (*models.Task, error) {
	if status == "" {
		status = models.StatusPending
	}
	t := &models.Task{
		ID:          s.nextID,
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Status:      status,
		CreatedAt:   time.Now().Add(time.Duration(s.nextID) * time.Millisecond),
	}
	s.tasks[t.ID] = t
	s.nextID++
	return t, nil
}

func (s *fakeTaskStore) FetchForOwner(ownerID int64, search, status string) ([]models.Task, error) {
	var tasks []models.Task
	for _, t := range s.tasks {
		if t.UserID != ownerID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(search)) {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	return tasks, nil
}

func (s *fakeTaskStore) Update(id, ownerID int64, title, description, status string) (bool, error) {
	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return false, nil
	}
	t.Title, t.Description, t.Status = title, description, status
	return true, nil
}

func (s *fakeTaskStore) Delete(id, ownerID int64, isAdmin bool) (bool, error) {
	t, ok := s.tasks[id]
	if !ok {
		return false, nil
	}
	if !isAdmin && t.UserID != ownerID {
		return false, nil
	}
	delete(s.tasks, id)
	return true, nil
}

func (s *fakeTaskStore) FetchAllWithOwners() ([]models.TaskWithOwner, error) {
	var tasks []models.TaskWithOwner
	for _, t := range s.tasks {
		owner := s.users.users[t.UserID]
		tasks = append(tasks, models.TaskWithOwner{
			Task:      *t,
			UserName:  owner.Name,
			UserEmail: owner.Email,
		})
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	return tasks, nil
}

// testRouter mirrors the route layout main builds, without the outer
// transport middleware.
func testRouter(users *fakeUserStore, tasks *fakeTaskStore, tokens *auth.TokenService) http.Handler {
	authH := NewAuthHandler(users, tokens)
	taskH := NewTaskHandler(tasks)
	adminH := NewAdminHandler(users, tasks)

	r := chi.NewRouter()
	r.NotFound(NotFound)
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", authH.Register)
		r.Post("/login", authH.Login)

		r.Group(func(r chi.Router) {
			r.Use(authH.Authenticate)

			r.Get("/profile", authH.GetProfile)
			r.Put("/profile", authH.UpdateProfile)

			r.Get("/tasks", taskH.List)
			r.Post("/tasks", taskH.Create)
			r.Put("/tasks/{id}", taskH.Update)
			r.Delete("/tasks/{id}", taskH.Delete)

			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireAdmin)

				r.Get("/users", adminH.ListUsers)
				r.Delete("/users/{id}", adminH.DeleteUser)
				r.Get("/tasks", adminH.ListTasks)
				r.Delete("/tasks/{id}", adminH.DeleteTask)
			})
		})
	})
	return r
}
