package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEventUnmarshalJSON(t *testing.T) {
	body := `{
		"_id": "should-be-dropped",
		"title": "Go Meetup",
		"date": "2025-06-20T18:30",
		"location": "Dhaka",
		"createdBy": "host@example.com",
		"attendeeCount": 99,
		"joinedUsers": ["x@example.com"],
		"description": "talks and pizza",
		"capacity": 40
	}`

	var e Event
	require.NoError(t, json.Unmarshal([]byte(body), &e))

	assert.True(t, e.ID.IsZero())
	assert.Equal(t, "Go Meetup", e.Title)
	assert.Equal(t, time.Date(2025, 6, 20, 18, 30, 0, 0, time.UTC), e.Datetime)
	assert.Equal(t, "Dhaka", e.Location)
	assert.Equal(t, "host@example.com", e.CreatedBy)
	assert.Zero(t, e.AttendeeCount)
	assert.Empty(t, e.JoinedUsers)
	assert.Equal(t, map[string]interface{}{"description": "talks and pizza", "capacity": float64(40)}, e.Extra)
}

func TestEventUnmarshalJSONRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not an object", `[1,2]`},
		{"null", `null`},
		{"title not string", `{"title": 5}`},
		{"bad datetime", `{"datetime": "next tuesday"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Event
			assert.Error(t, json.Unmarshal([]byte(tt.body), &e))
		})
	}
}

func TestEventMarshalJSON(t *testing.T) {
	id := primitive.NewObjectID()
	e := Event{
		ID:       id,
		Title:    "Launch",
		Datetime: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Location: "Online",
		Extra:    map[string]interface{}{"category": "tech"},
	}

	b, err := json.Marshal(e)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, id.Hex(), got["_id"])
	assert.Equal(t, "Launch", got["title"])
	assert.Equal(t, "2025-01-02T03:04:05Z", got["datetime"])
	assert.Equal(t, "tech", got["category"])
	assert.Equal(t, []interface{}{}, got["joinedUsers"])
	assert.Equal(t, float64(0), got["attendeeCount"])
}

func TestEventMarshalJSONOmitsZeroValues(t *testing.T) {
	b, err := json.Marshal(&Event{Title: "x"})
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.NotContains(t, got, "_id")
	assert.NotContains(t, got, "datetime")
}

func TestNormalizeEventFields(t *testing.T) {
	in := map[string]interface{}{
		"_id":           "x",
		"joinedUsers":   []interface{}{"a"},
		"attendeeCount": float64(3),
		"date":          "2024-12-31",
		"datetime":      "2025-01-01T10:00:00+06:00",
		"title":         "New title",
		"tags":          []interface{}{"a", "b"},
	}

	out, err := NormalizeEventFields(in)
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{
		"datetime": time.Date(2025, 1, 1, 4, 0, 0, 0, time.UTC),
		"title":    "New title",
		"tags":     []interface{}{"a", "b"},
	}, out)
}

func TestNormalizeEventFieldsRejectsPaths(t *testing.T) {
	for _, key := range []string{"joinedUsers.0", "createdBy.x", "a.b", "$inc", "$where", ""} {
		t.Run(key, func(t *testing.T) {
			_, err := NormalizeEventFields(map[string]interface{}{key: "x", "title": "ok"})
			assert.Error(t, err)
		})
	}
}

func TestParseEventTime(t *testing.T) {
	want := time.Date(2025, 3, 9, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      interface{}
		want    time.Time
		wantErr bool
	}{
		{"rfc3339", "2025-03-09T14:00:00Z", want, false},
		{"rfc3339 offset", "2025-03-09T20:00:00+06:00", want, false},
		{"datetime-local", "2025-03-09T14:00", want, false},
		{"space separated", "2025-03-09 14:00:00", want, false},
		{"date only", "2025-03-09", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), false},
		{"unix millis", float64(want.UnixMilli()), want, false},
		{"time value", want.In(time.FixedZone("X", 3600)), want, false},
		{"garbage", "soon", time.Time{}, true},
		{"bool", true, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEventTime(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestHasJoined(t *testing.T) {
	e := &Event{JoinedUsers: []string{"a@x.io", "b@x.io"}}
	assert.True(t, e.HasJoined("b@x.io"))
	assert.False(t, e.HasJoined("c@x.io"))
}
