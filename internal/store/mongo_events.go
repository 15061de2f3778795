package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reazulislam1487/event-hub-server/internal/metrics"
	"github.com/reazulislam1487/event-hub-server/internal/models"
)

// eventFilter matches the search term as a literal, case-insensitive
// substring of the title or the location.
func eventFilter(q models.EventQuery) bson.M {
	if q.Search == "" {
		return bson.M{}
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{models.FieldTitle: pattern},
		bson.M{models.FieldLocation: pattern},
	}}
}

func sortByDatetime(ascending bool) bson.D {
	dir := -1
	if ascending {
		dir = 1
	}
	return bson.D{{Key: models.FieldDatetime, Value: dir}, {Key: "_id", Value: dir}}
}

func (s *MongoStore) findEvents(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cur, err := s.events.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Event{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) ListEvents(ctx context.Context, q models.EventQuery) ([]models.Event, error) {
	defer metrics.ObserveStore("list_events", time.Now())
	events, err := s.findEvents(ctx, eventFilter(q), options.Find().SetSort(sortByDatetime(q.Ascending)))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *MongoStore) RecentEvents(ctx context.Context, limit int64) ([]models.Event, error) {
	defer metrics.ObserveStore("recent_events", time.Now())
	opts := options.Find().SetSort(sortByDatetime(false)).SetLimit(limit)
	events, err := s.findEvents(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	return events, nil
}

func (s *MongoStore) EventsByOwner(ctx context.Context, owner string) ([]models.Event, error) {
	defer metrics.ObserveStore("events_by_owner", time.Now())
	opts := options.Find().SetSort(sortByDatetime(false))
	events, err := s.findEvents(ctx, bson.M{models.FieldCreatedBy: owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("events by owner: %w", err)
	}
	return events, nil
}

func (s *MongoStore) InsertEvent(ctx context.Context, e *models.Event) (string, error) {
	defer metrics.ObserveStore("insert_event", time.Now())
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if e.JoinedUsers == nil {
		e.JoinedUsers = []string{}
	}
	res, err := s.events.InsertOne(ctx, e)
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert event: unexpected id type %T", res.InsertedID)
	}
	e.ID = oid
	return oid.Hex(), nil
}

// JoinEvent appends email to joinedUsers and increments attendeeCount in one
// conditional update, so concurrent joins never lose an increment and a
// repeated join never matches.
func (s *MongoStore) JoinEvent(ctx context.Context, id, email string) (models.UpdateResult, error) {
	defer metrics.ObserveStore("join_event", time.Now())
	oid, err := parseObjectID(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": oid, models.FieldJoinedUsers: bson.M{"$ne": email}}
	update := bson.M{
		"$inc":  bson.M{models.FieldAttendeeCount: 1},
		"$push": bson.M{models.FieldJoinedUsers: email},
	}
	res, err := s.events.UpdateOne(ctx, filter, update)
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("join event: %w", err)
	}
	if res.MatchedCount == 0 {
		exists, err := s.eventExists(ctx, oid)
		if err != nil {
			return models.UpdateResult{}, err
		}
		if !exists {
			return models.UpdateResult{}, ErrNotFound
		}
		return models.UpdateResult{}, ErrAlreadyMember
	}
	return updateResult(res), nil
}

// UpdateEvent applies $set to an event owned by owner. A missing event yields
// a zero-match result, an event owned by someone else ErrOwnerMismatch.
func (s *MongoStore) UpdateEvent(ctx context.Context, id, owner string, fields map[string]interface{}) (models.UpdateResult, error) {
	defer metrics.ObserveStore("update_event", time.Now())
	oid, err := parseObjectID(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": oid, models.FieldCreatedBy: owner}
	res, err := s.events.UpdateOne(ctx, filter, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("update event: %w", err)
	}
	if res.MatchedCount == 0 {
		if err := s.ownerMismatch(ctx, oid); err != nil {
			return models.UpdateResult{}, err
		}
	}
	return updateResult(res), nil
}

// DeleteEvent removes an event owned by owner. Deleting a missing event is
// not an error; the result simply reports zero deletions.
func (s *MongoStore) DeleteEvent(ctx context.Context, id, owner string) (models.DeleteResult, error) {
	defer metrics.ObserveStore("delete_event", time.Now())
	oid, err := parseObjectID(id)
	if err != nil {
		return models.DeleteResult{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.events.DeleteOne(ctx, bson.M{"_id": oid, models.FieldCreatedBy: owner})
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("delete event: %w", err)
	}
	if res.DeletedCount == 0 {
		if err := s.ownerMismatch(ctx, oid); err != nil {
			return models.DeleteResult{}, err
		}
	}
	return models.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

func (s *MongoStore) eventExists(ctx context.Context, oid primitive.ObjectID) (bool, error) {
	n, err := s.events.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count event: %w", err)
	}
	return n > 0, nil
}

// ownerMismatch is called after an owner-scoped write matched nothing.
func (s *MongoStore) ownerMismatch(ctx context.Context, oid primitive.ObjectID) error {
	exists, err := s.eventExists(ctx, oid)
	if err != nil {
		return err
	}
	if exists {
		return ErrOwnerMismatch
	}
	return nil
}

func updateResult(res *mongo.UpdateResult) models.UpdateResult {
	return models.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}
}
