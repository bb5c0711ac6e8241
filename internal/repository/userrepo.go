package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/primetrade/taskapi/internal/models"
)

var (
	ErrDuplicateEmail = errors.New("email already exists")
	ErrNotFound       = errors.New("record not found")
)

// uniqueViolation is the postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) (*UserRepo, error) {
	repo := &UserRepo{db: db}

	err := repo.createTable()
	if err != nil {
		return nil, fmt.Errorf("could not initialize users table: %w", err)
	}

	return repo, nil
}

func (r *UserRepo) createTable() error {
	createTableQuery := `CREATE TABLE IF NOT EXISTS users(
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	_, err := r.db.Exec(createTableQuery)
	return err
}

// Create persists a new user. The password must already be hashed by
// the caller. Returns ErrDuplicateEmail when the email is taken.
func (r *UserRepo) Create(name, email, passwordHash, role string) (*models.User, error) {
	query := `INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	err := r.db.QueryRow(query, name, email, passwordHash, role).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		slog.Error("user_insert_failed", "error", err)
		return nil, err
	}
	return user, nil
}

// FindByEmail returns the full record including the password hash, for
// login verification only. Returns ErrNotFound for unknown emails.
func (r *UserRepo) FindByEmail(email string) (*models.User, error) {
	query := "SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = $1"

	var u models.User
	err := r.db.QueryRow(query, email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		slog.Error("user_fetch_by_email_failed", "error", err)
		return nil, err
	}
	return &u, nil
}

// FindByID returns the public shape without the password hash.
func (r *UserRepo) FindByID(id int64) (*models.PublicUser, error) {
	query := "SELECT id, name, email, role, created_at FROM users WHERE id = $1"

	var u models.PublicUser
	err := r.db.QueryRow(query, id).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		slog.Error("user_fetch_by_id_failed", "error", err)
		return nil, err
	}
	return &u, nil
}

// UpdateName changes the only profile field an owner may edit. Role and
// email are immutable through this path.
func (r *UserRepo) UpdateName(id int64, name string) (bool, error) {
	res, err := r.db.Exec("UPDATE users SET name = $1 WHERE id = $2", name, id)
	if err != nil {
		slog.Error("user_update_name_failed", "error", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListAll returns every user, newest first, without password hashes.
func (r *UserRepo) ListAll() ([]models.PublicUser, error) {
	query := "SELECT id, name, email, role, created_at FROM users ORDER BY created_at DESC"
	rows, err := r.db.Query(query)
	if err != nil {
		slog.Error("user_list_failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var users []models.PublicUser
	for rows.Next() {
		var u models.PublicUser
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepo) DeleteByID(id int64) (bool, error) {
	res, err := r.db.Exec("DELETE FROM users WHERE id = $1", id)
	if err != nil {
		slog.Error("user_delete_failed", "error", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
