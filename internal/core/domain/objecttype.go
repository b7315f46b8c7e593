package domain

// ObjectType identifies one of the Zoom object kinds the connector can
// extract and index.
type ObjectType string

// The supported object types. The string values double as the config keys
// under "objects" and as the `type` field stamped on every document.
const (
	ObjectUsers        ObjectType = "users"
	ObjectRoles        ObjectType = "roles"
	ObjectGroups       ObjectType = "groups"
	ObjectMeetings     ObjectType = "meetings"
	ObjectPastMeetings ObjectType = "past_meetings"
	ObjectRecordings   ObjectType = "recordings"
	ObjectChannels     ObjectType = "channels"
	ObjectChats        ObjectType = "chats"
	ObjectFiles        ObjectType = "files"
)

// AllObjectTypes returns every supported object type in canonical sync order:
// account-level objects first, then the user-scoped ones.
func AllObjectTypes() []ObjectType {
	return []ObjectType{
		ObjectRoles,
		ObjectGroups,
		ObjectUsers,
		ObjectMeetings,
		ObjectPastMeetings,
		ObjectRecordings,
		ObjectChannels,
		ObjectChats,
		ObjectFiles,
	}
}

// Valid reports whether t is one of the supported object types.
func (t ObjectType) Valid() bool {
	switch t {
	case ObjectUsers, ObjectRoles, ObjectGroups, ObjectMeetings,
		ObjectPastMeetings, ObjectRecordings, ObjectChannels,
		ObjectChats, ObjectFiles:
		return true
	}
	return false
}

// TimeWindowed reports whether t is fetched within a checkpoint time window.
// Roles and groups are always fetched in full, so they carry no checkpoint.
func (t ObjectType) TimeWindowed() bool {
	return t != ObjectRoles && t != ObjectGroups
}

// RetentionLimit classifies how far back the upstream API can still return
// data for t. A zero duration means the type has no retention boundary.
func (t ObjectType) RetentionLimit() RetentionLimit {
	switch t {
	case ObjectChats, ObjectFiles:
		return RetentionSixMonths
	case ObjectMeetings, ObjectPastMeetings, ObjectRecordings:
		return RetentionOneMonth
	}
	return RetentionNone
}

// RetentionLimit is the upstream retention class for a time-range-limited
// object type.
type RetentionLimit int

const (
	// RetentionNone means the API can return arbitrarily old data.
	RetentionNone RetentionLimit = iota
	// RetentionOneMonth covers meetings, past meetings and recordings.
	RetentionOneMonth
	// RetentionSixMonths covers chat messages and chat files.
	RetentionSixMonths
)

// RunKind distinguishes the sync run that produced a checkpoint.
type RunKind string

const (
	RunFull        RunKind = "full"
	RunIncremental RunKind = "incremental"
	RunDeletion    RunKind = "deletion"
)
