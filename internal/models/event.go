package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event document field names, shared by the JSON and BSON representations.
const (
	FieldID            = "_id"
	FieldTitle         = "title"
	FieldDatetime      = "datetime"
	FieldLocation      = "location"
	FieldCreatedBy     = "createdBy"
	FieldAttendeeCount = "attendeeCount"
	FieldJoinedUsers   = "joinedUsers"

	// FieldLegacyDate is the older name of FieldDatetime. It is accepted on
	// input and rewritten by the migrate command.
	FieldLegacyDate = "date"
)

// Event is a single record of the events collection. Fields the service does
// not interpret are kept in Extra and stored verbatim.
type Event struct {
	ID            primitive.ObjectID     `bson:"_id,omitempty"`
	Title         string                 `bson:"title"`
	Datetime      time.Time              `bson:"datetime,omitempty"`
	Location      string                 `bson:"location"`
	CreatedBy     string                 `bson:"createdBy"`
	AttendeeCount int                    `bson:"attendeeCount"`
	JoinedUsers   []string               `bson:"joinedUsers"`
	Extra         map[string]interface{} `bson:",inline"`
}

// HasJoined reports whether email is already in JoinedUsers.
func (e *Event) HasJoined(email string) bool {
	for _, u := range e.JoinedUsers {
		if u == email {
			return true
		}
	}
	return false
}

func (e Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(e.Extra)+7)
	for k, v := range e.Extra {
		out[k] = v
	}
	if !e.ID.IsZero() {
		out[FieldID] = e.ID.Hex()
	}
	out[FieldTitle] = e.Title
	if !e.Datetime.IsZero() {
		out[FieldDatetime] = e.Datetime.UTC()
	}
	out[FieldLocation] = e.Location
	out[FieldCreatedBy] = e.CreatedBy
	out[FieldAttendeeCount] = e.AttendeeCount
	joined := e.JoinedUsers
	if joined == nil {
		joined = []string{}
	}
	out[FieldJoinedUsers] = joined
	return json.Marshal(out)
}

// UnmarshalJSON reads a client payload. Server-managed fields are ignored.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("event must be a JSON object")
	}

	fields, err := NormalizeEventFields(raw)
	if err != nil {
		return err
	}

	*e = Event{}
	for k, v := range fields {
		switch k {
		case FieldTitle:
			e.Title = v.(string)
		case FieldLocation:
			e.Location = v.(string)
		case FieldCreatedBy:
			e.CreatedBy = v.(string)
		case FieldDatetime:
			e.Datetime = v.(time.Time)
		default:
			if e.Extra == nil {
				e.Extra = make(map[string]interface{})
			}
			e.Extra[k] = v
		}
	}
	return nil
}

var serverManaged = map[string]bool{
	FieldID:            true,
	"id":               true,
	FieldAttendeeCount: true,
	FieldJoinedUsers:   true,
}

// NormalizeEventFields turns client-supplied fields into store values. It
// rejects dotted and "$" keys, drops server-managed keys, requires the known
// text fields to be strings, and folds "date"/"datetime" into a single parsed
// FieldDatetime.
func NormalizeEventFields(in map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		if k == "" || strings.HasPrefix(k, "$") || strings.Contains(k, ".") {
			return nil, fmt.Errorf("invalid field name %q", k)
		}
		if serverManaged[k] {
			continue
		}
		switch k {
		case FieldTitle, FieldLocation, FieldCreatedBy:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be a string", k)
			}
			out[k] = s
		case FieldDatetime, FieldLegacyDate:
			if _, both := in[FieldDatetime]; both && k == FieldLegacyDate {
				continue
			}
			t, err := ParseEventTime(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[FieldDatetime] = t
		default:
			out[k] = v
		}
	}
	return out, nil
}

var eventTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseEventTime accepts ISO-8601 strings (with or without zone, seconds or
// time of day) and numbers holding Unix milliseconds. Zone-less values are UTC.
func ParseEventTime(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range eventTimeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return time.Time{}, errors.New("invalid timestamp")
		}
		return time.UnixMilli(int64(t)).UTC(), nil
	case int64:
		return time.UnixMilli(t).UTC(), nil
	case int32:
		return time.UnixMilli(int64(t)).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

// EventQuery selects events for the listing endpoint.
type EventQuery struct {
	Search    string
	Ascending bool
}

// InsertResult mirrors the acknowledgment of a single-document insert.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// UpdateResult mirrors the acknowledgment of a single-document update.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult mirrors the acknowledgment of a single-document delete.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}
