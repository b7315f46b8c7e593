package domain

// Document is the canonical unit moved through the sync pipeline: one
// normalized, index-ready record produced by a fetcher from one raw
// upstream object. (Type, ID) is the dedup key everywhere.
type Document struct {
	ID   string     `json:"id"`
	Type ObjectType `json:"type"`

	// ParentID is the owning entity, e.g. the user hosting a meeting or
	// the meeting a past-meeting instance belongs to.
	ParentID string `json:"parent_id,omitempty"`

	// CreatedAt is the natural timestamp of the source object in RFC 3339,
	// empty for types without one.
	CreatedAt string `json:"created_at,omitempty"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Size        int64  `json:"size,omitempty"`

	// Body is free text assembled from type-specific fields. It is the
	// only unbounded field and may be dropped when a single document
	// exceeds the index payload ceiling.
	Body string `json:"body,omitempty"`

	// URL deep-links back to the object in the Zoom UI.
	URL string `json:"url,omitempty"`

	// AllowPermissions carries the permission principals allowed to see
	// the document. Populated only when permission sync is enabled.
	AllowPermissions []string `json:"_allow_permissions,omitempty"`
}

// Key returns the pipeline-wide dedup key for the document.
func (d Document) Key() DocumentKey {
	return DocumentKey{Type: d.Type, ID: d.ID}
}

// Record trims the document down to the metadata persisted in the local
// store after successful indexing.
func (d Document) Record() DocumentRecord {
	return DocumentRecord{
		ID:        d.ID,
		Type:      d.Type,
		ParentID:  d.ParentID,
		CreatedAt: d.CreatedAt,
	}
}

// DocumentKey uniquely identifies a document within the pipeline.
type DocumentKey struct {
	Type ObjectType
	ID   string
}

// DocumentRecord is the trimmed projection of an indexed document kept in
// the local store and used by deletion sync to verify continued existence.
type DocumentRecord struct {
	ID        string     `json:"id"`
	Type      ObjectType `json:"type"`
	ParentID  string     `json:"parent_id"`
	CreatedAt string     `json:"created_at"`
}

// Key returns the dedup key for the record.
func (r DocumentRecord) Key() DocumentKey {
	return DocumentKey{Type: r.Type, ID: r.ID}
}

// StorageState is the connector's durable sync state.
//
// GlobalKeys lists the documents believed to be currently indexed.
// DeleteKeys is a snapshot of GlobalKeys taken when indexed documents were
// last stored; deletion sync verifies each entry still exists upstream and
// clears the snapshot when it finishes.
type StorageState struct {
	GlobalKeys []DocumentRecord `json:"global_keys"`
	DeleteKeys []DocumentRecord `json:"delete_keys"`
}

// UserProfile is the subset of an upstream user record the orchestrator
// needs for partitioning and that the users fetcher projects into documents.
type UserProfile struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	RoleID    string `json:"role_id"`
	CreatedAt string `json:"created_at"`
}

// MeetingCandidate is a meeting listed during the meetings pass, carried by
// the orchestrator to the past-meetings fetcher (past-meeting detail is only
// queryable by meeting id, never listable).
type MeetingCandidate struct {
	ID        string `json:"id"`
	UUID      string `json:"uuid"`
	HostID    string `json:"host_id"`
	Topic     string `json:"topic"`
	Type      int    `json:"type"`
	CreatedAt string `json:"created_at"`
}

// UserPermissions pairs an index identity with its permission set, as
// reported by the search index's ACL store.
type UserPermissions struct {
	User        string   `json:"user"`
	Permissions []string `json:"permissions"`
}
