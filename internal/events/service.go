// Package events implements the event catalog: listing, creation, joining and
// owner-scoped edits of events.
package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reazulislam1487/event-hub-server/internal/metrics"
	"github.com/reazulislam1487/event-hub-server/internal/models"
	"github.com/reazulislam1487/event-hub-server/internal/store"
)

// RecentLimit caps the recent-events listing.
const RecentLimit = 8

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrAlreadyJoined  = errors.New("already joined")
	ErrNotOwner       = errors.New("not the event owner")
	ErrInvalidID      = errors.New("invalid event id")
	ErrEmptyUpdate    = errors.New("no updatable fields")
	ErrInvalidPayload = errors.New("invalid event payload")
)

// Store is the persistence the catalog needs.
type Store interface {
	ListEvents(ctx context.Context, q models.EventQuery) ([]models.Event, error)
	RecentEvents(ctx context.Context, limit int64) ([]models.Event, error)
	EventsByOwner(ctx context.Context, owner string) ([]models.Event, error)
	InsertEvent(ctx context.Context, e *models.Event) (string, error)
	JoinEvent(ctx context.Context, id, email string) (models.UpdateResult, error)
	UpdateEvent(ctx context.Context, id, owner string, fields map[string]interface{}) (models.UpdateResult, error)
	DeleteEvent(ctx context.Context, id, owner string) (models.DeleteResult, error)
}

type Service struct {
	store Store
}

func NewService(s Store) *Service {
	return &Service{store: s}
}

// List returns events whose title or location contains search, ordered by
// datetime (newest first unless ascending).
func (s *Service) List(ctx context.Context, search string, ascending bool) ([]models.Event, error) {
	events, err := s.store.ListEvents(ctx, models.EventQuery{
		Search:    strings.TrimSpace(search),
		Ascending: ascending,
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Recent returns at most RecentLimit events, newest first.
func (s *Service) Recent(ctx context.Context) ([]models.Event, error) {
	events, err := s.store.RecentEvents(ctx, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	return events, nil
}

// Create stores e on behalf of owner. Counters start at zero and the owner
// always comes from the caller.
func (s *Service) Create(ctx context.Context, owner string, e *models.Event) (models.InsertResult, error) {
	if e.CreatedBy != "" && !strings.EqualFold(e.CreatedBy, owner) {
		return models.InsertResult{}, ErrNotOwner
	}
	e.ID = primitive.NilObjectID
	e.CreatedBy = owner
	e.AttendeeCount = 0
	e.JoinedUsers = []string{}

	id, err := s.store.InsertEvent(ctx, e)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert event: %w", err)
	}
	return models.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

// Join adds email to the event's attendees.
func (s *Service) Join(ctx context.Context, id, email string) (models.UpdateResult, error) {
	res, err := s.store.JoinEvent(ctx, id, email)
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidID):
		return models.UpdateResult{}, ErrEventNotFound
	case errors.Is(err, store.ErrAlreadyMember):
		return models.UpdateResult{}, ErrAlreadyJoined
	case err != nil:
		return models.UpdateResult{}, fmt.Errorf("join event: %w", err)
	}
	metrics.EventsJoined.Inc()
	return res, nil
}

// Update merges fields into an event owned by owner. Server-managed fields
// are ignored; a missing event reports zero matches.
func (s *Service) Update(ctx context.Context, id, owner string, fields map[string]interface{}) (models.UpdateResult, error) {
	set, err := models.NormalizeEventFields(fields)
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	delete(set, models.FieldCreatedBy)
	if len(set) == 0 {
		return models.UpdateResult{}, ErrEmptyUpdate
	}

	res, err := s.store.UpdateEvent(ctx, id, owner, set)
	if err != nil {
		return models.UpdateResult{}, mapWriteErr("update event", err)
	}
	return res, nil
}

// ListByOwner returns the events created by owner.
func (s *Service) ListByOwner(ctx context.Context, owner string) ([]models.Event, error) {
	events, err := s.store.EventsByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("events by owner: %w", err)
	}
	return events, nil
}

// Delete removes an event owned by owner. Deleting a missing event succeeds
// with a zero count.
func (s *Service) Delete(ctx context.Context, id, owner string) (models.DeleteResult, error) {
	res, err := s.store.DeleteEvent(ctx, id, owner)
	if err != nil {
		return models.DeleteResult{}, mapWriteErr("delete event", err)
	}
	return res, nil
}

func mapWriteErr(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		return ErrInvalidID
	case errors.Is(err, store.ErrOwnerMismatch):
		return ErrNotOwner
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
