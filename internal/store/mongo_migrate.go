package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reazulislam1487/event-hub-server/internal/models"
)

// MigrationReport summarizes a MigrateEventDates run.
type MigrationReport struct {
	Migrated int
	Skipped  []string
}

// MigrateEventDates moves legacy "date" values and string "datetime" values
// into a BSON date stored under "datetime". Documents whose timestamp cannot
// be parsed are left untouched and reported by id.
func (s *MongoStore) MigrateEventDates(ctx context.Context) (MigrationReport, error) {
	var report MigrationReport

	filter := bson.M{"$or": bson.A{
		bson.M{models.FieldLegacyDate: bson.M{"$exists": true}},
		bson.M{models.FieldDatetime: bson.M{"$type": "string"}},
	}}
	cur, err := s.events.Find(ctx, filter)
	if err != nil {
		return report, fmt.Errorf("find legacy events: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return report, fmt.Errorf("decode event: %w", err)
		}

		// An existing datetime wins over the legacy field.
		var value interface{}
		switch v := doc[models.FieldDatetime].(type) {
		case string:
			value = v
		case primitive.DateTime:
			value = v.Time()
		default:
			value = doc[models.FieldLegacyDate]
			if dt, isDate := value.(primitive.DateTime); isDate {
				value = dt.Time()
			}
		}

		t, err := models.ParseEventTime(value)
		if err != nil {
			report.Skipped = append(report.Skipped, docID(doc["_id"]))
			continue
		}

		update := bson.M{
			"$set":   bson.M{models.FieldDatetime: t},
			"$unset": bson.M{models.FieldLegacyDate: ""},
		}
		if _, err := s.events.UpdateByID(ctx, doc["_id"], update); err != nil {
			return report, fmt.Errorf("migrate event %v: %w", doc["_id"], err)
		}
		report.Migrated++
	}
	return report, cur.Err()
}

func docID(v interface{}) string {
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(v)
}
