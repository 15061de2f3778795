package events

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/reazulislam1487/event-hub-server/internal/auth"
	"github.com/reazulislam1487/event-hub-server/internal/models"
	"github.com/reazulislam1487/event-hub-server/internal/respond"
)

// Catalog is the part of Service the HTTP handlers use.
type Catalog interface {
	List(ctx context.Context, search string, ascending bool) ([]models.Event, error)
	Recent(ctx context.Context) ([]models.Event, error)
	Create(ctx context.Context, owner string, e *models.Event) (models.InsertResult, error)
	Join(ctx context.Context, id, email string) (models.UpdateResult, error)
	Update(ctx context.Context, id, owner string, fields map[string]interface{}) (models.UpdateResult, error)
	ListByOwner(ctx context.Context, owner string) ([]models.Event, error)
	Delete(ctx context.Context, id, owner string) (models.DeleteResult, error)
}

type Handler struct {
	svc Catalog
}

func NewHandler(svc Catalog) *Handler {
	return &Handler{svc: svc}
}

type joinRequest struct {
	Email string `json:"email"`
}

type joinResponse struct {
	Message string              `json:"message"`
	Result  models.UpdateResult `json:"result"`
}

// List handles GET /events?search=&sort=asc|desc.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ascending := strings.EqualFold(q.Get("sort"), "asc")

	events, err := h.svc.List(r.Context(), q.Get("search"), ascending)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	respond.JSON(w, http.StatusOK, events)
}

// Recent handles GET /events/limited.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.Recent(r.Context())
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	respond.JSON(w, http.StatusOK, events)
}

// Create handles POST /add/event.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var e models.Event
	if err := respond.Decode(r, &e); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid event payload", err)
		return
	}

	res, err := h.svc.Create(r.Context(), caller.Email, &e)
	switch {
	case errors.Is(err, ErrNotOwner):
		respond.Error(w, r, http.StatusForbidden, "createdBy must be the signed-in user", nil)
		return
	case err != nil:
		respond.Error(w, r, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

// Join handles PATCH /events/{id}. The joining email is the caller's; a body
// naming anyone else is rejected.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var req joinRequest
	if err := respond.Decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Email != "" && !strings.EqualFold(strings.TrimSpace(req.Email), caller.Email) {
		respond.Error(w, r, http.StatusForbidden, "cannot join on behalf of another user", nil)
		return
	}

	res, err := h.svc.Join(r.Context(), chi.URLParam(r, "id"), caller.Email)
	switch {
	case errors.Is(err, ErrEventNotFound):
		respond.Error(w, r, http.StatusNotFound, "Event not found", nil)
		return
	case errors.Is(err, ErrAlreadyJoined):
		respond.Error(w, r, http.StatusBadRequest, "You have already joined this event.", nil)
		return
	case err != nil:
		respond.Error(w, r, http.StatusInternalServerError, "Something went wrong", err)
		return
	}
	respond.JSON(w, http.StatusOK, joinResponse{Message: "Successfully joined the event", Result: res})
}

// Update handles PUT /my-events/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var fields map[string]interface{}
	if err := respond.Decode(r, &fields); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	res, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), caller.Email, fields)
	if err != nil {
		writeWriteErr(w, r, err, "Failed to update event")
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

// ListByOwner handles GET /my-events. An explicit ?email= must match the caller.
func (h *Handler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	if email := r.URL.Query().Get("email"); email != "" && !strings.EqualFold(email, caller.Email) {
		respond.Error(w, r, http.StatusForbidden, "cannot list another user's events", nil)
		return
	}

	events, err := h.svc.ListByOwner(r.Context(), caller.Email)
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	respond.JSON(w, http.StatusOK, events)
}

// Delete handles DELETE /my-events/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), caller.Email)
	if err != nil {
		writeWriteErr(w, r, err, "Failed to delete event")
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

func writeWriteErr(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidID):
		respond.Error(w, r, http.StatusBadRequest, "invalid event id", nil)
	case errors.Is(err, ErrNotOwner):
		respond.Error(w, r, http.StatusForbidden, "you do not own this event", nil)
	case errors.Is(err, ErrEmptyUpdate):
		respond.Error(w, r, http.StatusBadRequest, "no updatable fields", nil)
	case errors.Is(err, ErrInvalidPayload):
		respond.Error(w, r, http.StatusBadRequest, err.Error(), nil)
	default:
		respond.Error(w, r, http.StatusInternalServerError, fallback, err)
	}
}

func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "not authenticated", nil)
	}
	return id, ok
}
