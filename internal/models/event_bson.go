package models

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// eventDoc mirrors Event with the timestamp left raw, so documents written
// before the datetime migration still decode.
type eventDoc struct {
	ID            primitive.ObjectID     `bson:"_id,omitempty"`
	Title         string                 `bson:"title"`
	Datetime      bson.RawValue          `bson:"datetime,omitempty"`
	Location      string                 `bson:"location"`
	CreatedBy     string                 `bson:"createdBy"`
	AttendeeCount int                    `bson:"attendeeCount"`
	JoinedUsers   []string               `bson:"joinedUsers"`
	Extra         map[string]interface{} `bson:",inline"`
}

// UnmarshalBSON accepts "datetime" as a BSON date or a parseable string, and
// falls back to the legacy "date" field. A value that cannot be parsed is kept
// verbatim in Extra.
func (e *Event) UnmarshalBSON(data []byte) error {
	dec, err := bson.NewDecoder(bsonrw.NewBSONDocumentReader(data))
	if err != nil {
		return err
	}
	dec.DefaultDocumentM()

	var doc eventDoc
	if err := dec.Decode(&doc); err != nil {
		return err
	}

	*e = Event{
		ID:            doc.ID,
		Title:         doc.Title,
		Location:      doc.Location,
		CreatedBy:     doc.CreatedBy,
		AttendeeCount: doc.AttendeeCount,
		JoinedUsers:   doc.JoinedUsers,
		Extra:         doc.Extra,
	}

	var raw interface{}
	switch doc.Datetime.Type {
	case bsontype.DateTime:
		e.Datetime = doc.Datetime.Time().UTC()
		return nil
	case bsontype.String:
		raw = doc.Datetime.StringValue()
	case bsontype.Int32:
		raw = doc.Datetime.Int32()
	case bsontype.Int64:
		raw = doc.Datetime.Int64()
	case bsontype.Double:
		raw = doc.Datetime.Double()
	default:
		raw = e.Extra[FieldLegacyDate]
	}
	if raw == nil {
		return nil
	}
	if dt, ok := raw.(primitive.DateTime); ok {
		raw = dt.Time()
	}

	t, err := ParseEventTime(raw)
	if err != nil {
		if doc.Datetime.Type == bsontype.String {
			if e.Extra == nil {
				e.Extra = make(map[string]interface{})
			}
			e.Extra[FieldDatetime] = raw
		}
		return nil
	}
	e.Datetime = t
	return nil
}
