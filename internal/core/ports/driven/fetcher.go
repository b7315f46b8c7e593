package driven

import (
	"context"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
)

// FetchScope carries everything a fetcher needs for one pass over one
// bucket of users. The orchestrator owns the scope; fetchers read from it
// and the meetings fetcher writes the meeting candidates the past-meetings
// fetcher consumes afterwards.
type FetchScope struct {
	// Schema is the resolved field projection for the fetcher's type.
	Schema domain.Projection

	// Window bounds the records to include, inclusive on both ends. Zero
	// for types that are always fetched in full.
	Window domain.TimeRange

	// PermissionsEnabled turns on permission tagging of documents.
	PermissionsEnabled bool

	// SourceIdentities maps a source user id to the index identities that
	// may read that user's documents. Nil when permissions are disabled.
	SourceIdentities map[string][]string

	// Users is the bucket of account users this pass covers.
	Users []domain.UserProfile

	// MeetingCandidates is populated by the meetings fetcher and read by
	// the past-meetings fetcher within the same bucket pass.
	MeetingCandidates []domain.MeetingCandidate

	// ChatUserIDs lists the users whose role grants chat read access;
	// only their message streams are queried for chats and files.
	ChatUserIDs []string
}

// ObjectFetcher pages through one upstream object type and produces
// normalized documents. Implementations must propagate pagination errors
// rather than return partial data, retrying only transient conditions.
type ObjectFetcher interface {
	ObjectType() domain.ObjectType
	Fetch(ctx context.Context, scope *FetchScope) ([]domain.Document, error)
}

// Directory exposes the account-level lookups the orchestrator performs
// before fanning out: the user list that gets partitioned into buckets, and
// the set of users whose roles grant chat read access.
type Directory interface {
	ListUsers(ctx context.Context) ([]domain.UserProfile, error)
	ChatAccessUserIDs(ctx context.Context) ([]string, error)
}

// ExistenceProber answers whether a previously indexed object still exists
// upstream. It must distinguish a definitive "gone" (the existence-negative
// status classes for the type) from transport failures, which propagate.
type ExistenceProber interface {
	Exists(ctx context.Context, t domain.ObjectType, id string) (bool, error)
}
