package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/primetrade/taskapi/internal/models"
)

type TaskRepo struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) (*TaskRepo, error) {
	repo := &TaskRepo{db: db}

	err := repo.createTable()
	if err != nil {
		return nil, fmt.Errorf("could not initialize tasks table: %w", err)
	}

	return repo, nil
}

func (r *TaskRepo) createTable() error {
	createTableQuery := `CREATE TABLE IF NOT EXISTS tasks(
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	_, err := r.db.Exec(createTableQuery)
	return err
}

// Create inserts a task for ownerID. An empty status becomes pending.
func (r *TaskRepo) Create(ownerID int64, title, description, status string) (*models.Task, error) {
	if status == "" {
		status = models.StatusPending
	}

	query := `INSERT INTO tasks (user_id, title, description, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	task := &models.Task{
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Status:      status,
	}
	err := r.db.QueryRow(query, ownerID, title, description, status).Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		slog.Error("task_insert_failed", "error", err)
		return nil, err
	}
	return task, nil
}

// FetchForOwner lists the owner's tasks, newest first. Both filters are
// optional; when present they are conjoined: a task must match every
// filter given. Title matching is a case-insensitive substring search.
func (r *TaskRepo) FetchForOwner(ownerID int64, search, status string) ([]models.Task, error) {
	query := "SELECT id, user_id, title, description, status, created_at FROM tasks WHERE user_id = $1"
	args := []any{ownerID}

	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND title ILIKE $%d", len(args))
	}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		slog.Error("task_list_failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update rewrites title, description and status. Ownership is enforced
// here as well as at the policy layer: the row must belong to ownerID
// or nothing is touched and false comes back.
func (r *TaskRepo) Update(id, ownerID int64, title, description, status string) (bool, error) {
	query := `UPDATE tasks SET title = $1, description = $2, status = $3
		WHERE id = $4 AND user_id = $5`
	res, err := r.db.Exec(query, title, description, status, id, ownerID)
	if err != nil {
		slog.Error("task_update_failed", "error", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes a task. Admin deletes ignore ownership; everyone else
// can only delete their own rows.
func (r *TaskRepo) Delete(id, ownerID int64, isAdmin bool) (bool, error) {
	var res sql.Result
	var err error
	if isAdmin {
		res, err = r.db.Exec("DELETE FROM tasks WHERE id = $1", id)
	} else {
		res, err = r.db.Exec("DELETE FROM tasks WHERE id = $1 AND user_id = $2", id, ownerID)
	}
	if err != nil {
		slog.Error("task_delete_failed", "error", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FetchAllWithOwners is the admin aggregate view: every task joined
// with its owner's name and email, newest first.
func (r *TaskRepo) FetchAllWithOwners() ([]models.TaskWithOwner, error) {
	query := `SELECT t.id, t.user_id, t.title, t.description, t.status, t.created_at, u.name, u.email
		FROM tasks t
		JOIN users u ON t.user_id = u.id
		ORDER BY t.created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		slog.Error("task_list_all_failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var tasks []models.TaskWithOwner
	for rows.Next() {
		var t models.TaskWithOwner
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.CreatedAt, &t.UserName, &t.UserEmail); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
