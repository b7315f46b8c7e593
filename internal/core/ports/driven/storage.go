package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
)

// LocalStore persists the record of which documents are currently indexed.
// It is only touched by the orchestration layer, strictly before producers
// start and after all consumers finish; implementations need no locking.
type LocalStore interface {
	// Load returns the persisted state. Missing or corrupt storage yields
	// an empty state, never an error appearing as fatal to the run.
	Load(ctx context.Context) (domain.StorageState, error)

	// Update atomically replaces the persisted state.
	Update(ctx context.Context, state domain.StorageState) error

	// StoreIndexedDocuments snapshots the current global keys into the
	// delete keys and then appends those fetched records whose id was
	// actually indexed and which are not already present (dedup by full
	// record equality).
	StoreIndexedDocuments(ctx context.Context, fetched []domain.DocumentRecord, indexedIDs map[string]struct{}) error
}

// CheckpointStore persists the per-object-type last-synced timestamp.
type CheckpointStore interface {
	// Window returns the next run's [start, end) window for t: the stored
	// checkpoint (or floor when none exists) up to now.
	Window(ctx context.Context, t domain.ObjectType, floor, now time.Time) (domain.TimeRange, error)

	// Set persists the checkpoint unconditionally. Callers invoke it only
	// after a run completes with zero consumer errors.
	Set(ctx context.Context, t domain.ObjectType, ts time.Time, kind domain.RunKind) error
}

// Credentials is the shared OAuth state mutated by the token provider.
type Credentials struct {
	RefreshToken string
	AccessToken  string
	Expiry       time.Time
}

// CredentialStore persists the OAuth credential state between runs.
type CredentialStore interface {
	LoadCredentials(ctx context.Context) (Credentials, error)
	SaveCredentials(ctx context.Context, creds Credentials) error
}

// TokenProvider hands out a valid upstream access token. Token returns the
// cached token, refreshing when expired; Refresh forces a renewal and is the
// 401 recovery path. Both are safe for concurrent use.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}
