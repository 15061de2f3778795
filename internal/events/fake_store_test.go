package events

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reazulislam1487/event-hub-server/internal/models"
	"github.com/reazulislam1487/event-hub-server/internal/store"
)

// memStore is an in-memory Store with the same join and ownership rules as
// the MongoDB implementation.
type memStore struct {
	mu     sync.Mutex
	events map[primitive.ObjectID]*models.Event
}

func newMemStore() *memStore {
	return &memStore{events: make(map[primitive.ObjectID]*models.Event)}
}

func (m *memStore) sorted(keep func(*models.Event) bool, ascending bool) []models.Event {
	out := []models.Event{}
	for _, e := range m.events {
		if keep(e) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if ascending {
			return out[i].Datetime.Before(out[j].Datetime)
		}
		return out[i].Datetime.After(out[j].Datetime)
	})
	return out
}

func (m *memStore) ListEvents(_ context.Context, q models.EventQuery) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	term := strings.ToLower(q.Search)
	return m.sorted(func(e *models.Event) bool {
		return strings.Contains(strings.ToLower(e.Title), term) ||
			strings.Contains(strings.ToLower(e.Location), term)
	}, q.Ascending), nil
}

func (m *memStore) RecentEvents(_ context.Context, limit int64) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.sorted(func(*models.Event) bool { return true }, false)
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) EventsByOwner(_ context.Context, owner string) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(e *models.Event) bool { return e.CreatedBy == owner }, false), nil
}

func (m *memStore) InsertEvent(_ context.Context, e *models.Event) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = primitive.NewObjectID()
	cp := *e
	m.events[e.ID] = &cp
	return e.ID.Hex(), nil
}

func (m *memStore) lookup(id string) (*models.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrInvalidID
	}
	return m.events[oid], nil
}

func (m *memStore) JoinEvent(_ context.Context, id, email string) (models.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.lookup(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	if e == nil {
		return models.UpdateResult{}, store.ErrNotFound
	}
	if e.HasJoined(email) {
		return models.UpdateResult{}, store.ErrAlreadyMember
	}
	e.AttendeeCount++
	e.JoinedUsers = append(e.JoinedUsers, email)
	return models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *memStore) UpdateEvent(_ context.Context, id, owner string, fields map[string]interface{}) (models.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.lookup(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	if e == nil {
		return models.UpdateResult{Acknowledged: true}, nil
	}
	if e.CreatedBy != owner {
		return models.UpdateResult{}, store.ErrOwnerMismatch
	}
	for k, v := range fields {
		if k == models.FieldTitle {
			e.Title = v.(string)
			continue
		}
		if e.Extra == nil {
			e.Extra = map[string]interface{}{}
		}
		e.Extra[k] = v
	}
	return models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *memStore) DeleteEvent(_ context.Context, id, owner string) (models.DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.lookup(id)
	if err != nil {
		return models.DeleteResult{}, err
	}
	if e == nil {
		return models.DeleteResult{Acknowledged: true}, nil
	}
	if e.CreatedBy != owner {
		return models.DeleteResult{}, store.ErrOwnerMismatch
	}
	delete(m.events, e.ID)
	return models.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}
