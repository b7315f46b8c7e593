package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveProjection(t *testing.T) {
	t.Run("no filter returns the default schema", func(t *testing.T) {
		p := ResolveProjection(ObjectRecordings, FieldFilter{})
		assert.Equal(t, DefaultSchema(ObjectRecordings), p)
	})

	t.Run("include keeps only the listed source fields", func(t *testing.T) {
		p := ResolveProjection(ObjectRecordings, FieldFilter{Include: []string{"topic"}})

		assert.Equal(t, "topic", p["title"])
		assert.NotContains(t, p, "url")
		assert.NotContains(t, p, "size")
	})

	t.Run("exclude drops the listed source fields", func(t *testing.T) {
		p := ResolveProjection(ObjectRecordings, FieldFilter{Exclude: []string{"play_url"}})

		assert.NotContains(t, p, "url")
		assert.Equal(t, "topic", p["title"])
	})

	t.Run("id survives any filter", func(t *testing.T) {
		p := ResolveProjection(ObjectFiles, FieldFilter{Include: []string{"file_name"}})
		assert.Equal(t, "file_id", p["id"])

		p = ResolveProjection(ObjectFiles, FieldFilter{Exclude: []string{"file_id"}})
		assert.Equal(t, "file_id", p["id"])
	})

	t.Run("every type has a default schema with an id", func(t *testing.T) {
		for _, typ := range AllObjectTypes() {
			schema := DefaultSchema(typ)
			require.NotEmpty(t, schema, "type %s", typ)
			assert.Contains(t, schema, "id", "type %s", typ)
		}
	})
}

func TestProjectionApply(t *testing.T) {
	t.Run("copies projected fields into the document", func(t *testing.T) {
		var doc Document
		DefaultSchema(ObjectRecordings).Apply(&doc, map[string]any{
			"id":              "rec-1",
			"topic":           "Weekly standup",
			"recording_start": "2026-05-01T10:00:00Z",
			"total_size":      float64(2048),
			"play_url":        "https://zoom.us/rec/play/abc",
		})

		assert.Equal(t, "rec-1", doc.ID)
		assert.Equal(t, "Weekly standup", doc.Title)
		assert.Equal(t, "2026-05-01T10:00:00Z", doc.CreatedAt)
		assert.Equal(t, int64(2048), doc.Size)
		assert.Equal(t, "https://zoom.us/rec/play/abc", doc.URL)
	})

	t.Run("missing source fields leave the document untouched", func(t *testing.T) {
		var doc Document
		DefaultSchema(ObjectRecordings).Apply(&doc, map[string]any{"id": "rec-2"})

		assert.Equal(t, "rec-2", doc.ID)
		assert.Empty(t, doc.URL)
		assert.Zero(t, doc.Size)
	})

	t.Run("numeric ids render as strings", func(t *testing.T) {
		var doc Document
		DefaultSchema(ObjectMeetings).Apply(&doc, map[string]any{"id": float64(91836648163)})
		assert.Equal(t, "91836648163", doc.ID)
	})
}
