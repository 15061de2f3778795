package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/reazulislam1487/event-hub-server/internal/metrics"
	"github.com/reazulislam1487/event-hub-server/internal/models"
	"github.com/reazulislam1487/event-hub-server/internal/respond"
)

// Credentials is the part of Service the HTTP handlers use.
type Credentials interface {
	Register(ctx context.Context, req models.RegisterRequest) error
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Logout(ctx context.Context, tokenID string) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc Credentials
}

func NewHandler(svc Credentials) *Handler {
	return &Handler{svc: svc}
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if msg := respond.Validate(req); msg != "" {
		respond.Error(w, r, http.StatusBadRequest, msg, nil)
		return
	}

	err := h.svc.Register(r.Context(), req)
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		respond.Error(w, r, http.StatusBadRequest, "Email already exists", nil)
		return
	case errors.Is(err, ErrPasswordTooLong):
		respond.Error(w, r, http.StatusBadRequest, "password: value is too long", nil)
		return
	case err != nil:
		respond.Error(w, r, http.StatusInternalServerError, "Registration failed", err)
		return
	}

	metrics.UsersRegistered.Inc()
	respond.JSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

// Login authenticates a user and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if msg := respond.Validate(req); msg != "" {
		respond.Error(w, r, http.StatusBadRequest, msg, nil)
		return
	}

	resp, err := h.svc.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, ErrUserNotFound):
		metrics.LoginAttempts.WithLabelValues("unknown_user").Inc()
		respond.Error(w, r, http.StatusUnauthorized, "user not found", nil)
		return
	case errors.Is(err, ErrInvalidCredentials):
		metrics.LoginAttempts.WithLabelValues("wrong_password").Inc()
		respond.Error(w, r, http.StatusUnauthorized, "Wrong password", nil)
		return
	case err != nil:
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		respond.Error(w, r, http.StatusInternalServerError, "Login failed", err)
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	respond.JSON(w, http.StatusOK, resp)
}

// Logout revokes the caller's token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	if err := h.svc.Logout(r.Context(), id.TokenID); err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "Logout failed", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// ListUsers returns every registered user without password hashes.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "Failed to fetch users", err)
		return
	}
	respond.JSON(w, http.StatusOK, users)
}
