package handler

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/primetrade/taskapi/internal/auth"
	"github.com/primetrade/taskapi/internal/models"
	"github.com/primetrade/taskapi/internal/repository"
)

// UserStore is the slice of the credential store the handlers need.
type UserStore interface {
	Create(name, email, passwordHash, role string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindByID(id int64) (*models.PublicUser, error)
	UpdateName(id int64, name string) (bool, error)
	ListAll() ([]models.PublicUser, error)
	DeleteByID(id int64) (bool, error)
}

// we are doing this to avoid collision with other packages' context keys
type contextKey string

const identityKey contextKey = "identity"

// IdentityFrom extracts the verified identity placed by Authenticate.
func IdentityFrom(r *http.Request) (*models.Claims, bool) {
	claims, ok := r.Context().Value(identityKey).(*models.Claims)
	return claims, ok
}

type AuthHandler struct {
	users  UserStore
	tokens *auth.TokenService
}

func NewAuthHandler(users UserStore, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// Authenticate verifies the bearer token and stores the identity in the
// request context. Missing token and invalid token are reported
// distinctly: 401 for absent credentials, 403 for bad ones.
func (h *AuthHandler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, msgTokenRequired)
			return
		}

		claims, err := h.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, http.StatusForbidden, msgInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin sits behind Authenticate on the admin routes.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r)
		if !ok || !auth.CanAdministrate(identity).Allowed() {
			writeError(w, http.StatusForbidden, msgAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    models.PublicUser `json:"user"`
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	switch {
	case len(req.Name) < 2:
		writeError(w, http.StatusBadRequest, "Name must be at least 2 characters")
		return
	case !validEmail(req.Email):
		writeError(w, http.StatusBadRequest, "Valid email required")
		return
	case len(req.Password) < 6:
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	user, err := h.users.Create(req.Name, req.Email, hash, role)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		writeError(w, http.StatusBadRequest, msgDuplicateEmail)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    user.Public(),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.FindByEmail(req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		//unknown email and wrong password are indistinguishable to the
		//caller, so accounts cannot be enumerated
		writeError(w, http.StatusBadRequest, msgInvalidCredentials)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusBadRequest, msgInvalidCredentials)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   token,
		User:    user.Public(),
	})
}

// GetProfile returns the caller's own record. The token may outlive the
// account; a deleted user gets 404 rather than a stale identity.
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgTokenRequired)
		return
	}

	user, err := h.users.FindByID(identity.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgUserNotFound)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

// UpdateProfile lets the owner change their name. Email and role are
// not editable through this path.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgTokenRequired)
		return
	}

	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 2 {
		writeError(w, http.StatusBadRequest, "Name must be at least 2 characters")
		return
	}

	updated, err := h.users.UpdateName(identity.UserID, req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Update failed")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, msgUserNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated successfully"})
}
