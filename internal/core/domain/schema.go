package domain

import "strconv"

// Projection maps output field names to upstream source field names. A
// fetcher builds a flat view of each raw object and applies the projection
// to populate the corresponding Document fields.
type Projection map[string]string

// defaultSchemas lists, per object type, the output fields uploaded to the
// index and the upstream fields that populate them.
var defaultSchemas = map[ObjectType]Projection{
	ObjectUsers: {
		"created_at": "created_at",
		"id":         "id",
		"title":      "first_name",
	},
	ObjectGroups: {
		"id":    "id",
		"title": "name",
	},
	ObjectChannels: {
		"id":    "id",
		"title": "name",
	},
	ObjectRoles: {
		"description": "description",
		"id":          "id",
		"title":       "name",
	},
	ObjectMeetings: {
		"created_at": "created_at",
		"id":         "id",
		"title":      "topic",
	},
	ObjectRecordings: {
		"created_at": "recording_start",
		"id":         "id",
		"size":       "total_size",
		"title":      "topic",
		"url":        "play_url",
	},
	ObjectChats: {
		"created_at":  "date_time",
		"description": "message",
		"id":          "id",
	},
	ObjectFiles: {
		"created_at": "date_time",
		"id":         "file_id",
		"size":       "file_size",
		"title":      "file_name",
		"url":        "download_url",
	},
	ObjectPastMeetings: {
		"created_at": "start_time",
		"id":         "uuid",
		"title":      "topic",
	},
}

// DefaultSchema returns a copy of the default projection for t.
func DefaultSchema(t ObjectType) Projection {
	p := make(Projection, len(defaultSchemas[t]))
	for k, v := range defaultSchemas[t] {
		p[k] = v
	}
	return p
}

// FieldFilter narrows a default schema from the configuration. Include and
// Exclude are mutually exclusive; when both are set Include wins.
type FieldFilter struct {
	Include []string `yaml:"include_fields"`
	Exclude []string `yaml:"exclude_fields"`
}

// ResolveProjection applies the configured field filter to the default
// schema of t. The id field is always retained regardless of the filter.
func ResolveProjection(t ObjectType, filter FieldFilter) Projection {
	schema := DefaultSchema(t)
	idField := schema["id"]
	switch {
	case len(filter.Include) > 0:
		allowed := toSet(filter.Include)
		for out, src := range schema {
			if _, ok := allowed[src]; !ok {
				delete(schema, out)
			}
		}
	case len(filter.Exclude) > 0:
		denied := toSet(filter.Exclude)
		for out, src := range schema {
			if _, ok := denied[src]; ok {
				delete(schema, out)
			}
		}
	}
	schema["id"] = idField
	return schema
}

// Apply copies the projected source fields into doc. Source values are keyed
// by upstream field name; output fields not present in the projection are
// left untouched.
func (p Projection) Apply(doc *Document, source map[string]any) {
	for out, src := range p {
		val, ok := source[src]
		if !ok {
			continue
		}
		doc.setField(out, val)
	}
}

func (d *Document) setField(name string, val any) {
	switch name {
	case "id":
		d.ID = asString(val)
	case "title":
		d.Title = asString(val)
	case "description":
		d.Description = asString(val)
	case "created_at":
		d.CreatedAt = asString(val)
	case "url":
		d.URL = asString(val)
	case "size":
		d.Size = asInt64(val)
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatInt(int64(s), 10)
	}
	return ""
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func toSet(fields []string) map[string]struct{} {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
