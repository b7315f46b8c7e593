package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
)

// fakeSearchIndex implements driven.SearchIndex in memory.
type fakeSearchIndex struct {
	mu          sync.Mutex
	indexed     []domain.Document
	deleted     []string
	failIDs     map[string]bool
	indexErr    error
	deleteErr   error
	permRemoved map[string][]string
	permAdded   map[string][]string
	listed      []domain.UserPermissions
}

func newFakeSearchIndex() *fakeSearchIndex {
	return &fakeSearchIndex{
		failIDs:     make(map[string]bool),
		permRemoved: map[string][]string{},
		permAdded:   map[string][]string{},
	}
}

func (f *fakeSearchIndex) IndexDocuments(_ context.Context, docs []domain.Document) ([]driven.IndexResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.indexErr != nil {
		return nil, f.indexErr
	}
	results := make([]driven.IndexResult, 0, len(docs))
	for _, doc := range docs {
		res := driven.IndexResult{ID: doc.ID}
		if f.failIDs[doc.ID] {
			res.Errors = []string{"field validation failed"}
		} else {
			f.indexed = append(f.indexed, doc)
		}
		results = append(results, res)
	}
	return results, nil
}

func (f *fakeSearchIndex) DeleteDocuments(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, ids...)
	return nil
}

func (f *fakeSearchIndex) ListPermissions(context.Context) ([]domain.UserPermissions, error) {
	return f.listed, nil
}

func (f *fakeSearchIndex) AddPermissions(_ context.Context, user string, permissions []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permAdded[user] = append(f.permAdded[user], permissions...)
	return nil
}

func (f *fakeSearchIndex) RemovePermissions(_ context.Context, user string, permissions []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permRemoved[user] = append(f.permRemoved[user], permissions...)
	return nil
}

func (f *fakeSearchIndex) CreateContentSource(context.Context, string) (string, error) {
	return "source-1", nil
}

func (f *fakeSearchIndex) indexedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.indexed))
	for _, doc := range f.indexed {
		out = append(out, doc.ID)
	}
	return out
}

// fakeLocalStore implements driven.LocalStore in memory.
type fakeLocalStore struct {
	mu     sync.Mutex
	state  domain.StorageState
	stored bool
}

func (f *fakeLocalStore) Load(context.Context) (domain.StorageState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, nil
}

func (f *fakeLocalStore) Update(_ context.Context, state domain.StorageState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
	return nil
}

func (f *fakeLocalStore) StoreIndexedDocuments(_ context.Context, fetched []domain.DocumentRecord, indexedIDs map[string]struct{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = true
	f.state.DeleteKeys = append([]domain.DocumentRecord(nil), f.state.GlobalKeys...)
	for _, rec := range fetched {
		if _, ok := indexedIDs[rec.ID]; ok {
			f.state.GlobalKeys = append(f.state.GlobalKeys, rec)
		}
	}
	return nil
}

// fakeCheckpointStore implements driven.CheckpointStore in memory.
type fakeCheckpointStore struct {
	mu     sync.Mutex
	marks  map[domain.ObjectType]time.Time
	floors map[domain.ObjectType]time.Time
}

func newFakeCheckpointStore() *fakeCheckpointStore {
	return &fakeCheckpointStore{marks: make(map[domain.ObjectType]time.Time)}
}

func (f *fakeCheckpointStore) Window(_ context.Context, t domain.ObjectType, floor, now time.Time) (domain.TimeRange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if mark, ok := f.marks[t]; ok {
		return domain.TimeRange{Start: mark, End: now}, nil
	}
	return domain.TimeRange{Start: floor, End: now}, nil
}

func (f *fakeCheckpointStore) Set(_ context.Context, t domain.ObjectType, ts time.Time, _ domain.RunKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marks[t] = ts
	return nil
}

// fakeFetcher returns canned documents for one type.
type fakeFetcher struct {
	typ  domain.ObjectType
	docs []domain.Document
	err  error

	mu      sync.Mutex
	windows []domain.TimeRange
}

func (f *fakeFetcher) ObjectType() domain.ObjectType { return f.typ }

func (f *fakeFetcher) Fetch(_ context.Context, scope *driven.FetchScope) ([]domain.Document, error) {
	f.mu.Lock()
	f.windows = append(f.windows, scope.Window)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

// fakeDirectory implements driven.Directory with fixed users.
type fakeDirectory struct {
	users   []domain.UserProfile
	chatIDs []string
}

func (f *fakeDirectory) ListUsers(context.Context) ([]domain.UserProfile, error) {
	return f.users, nil
}

func (f *fakeDirectory) ChatAccessUserIDs(context.Context) ([]string, error) {
	return f.chatIDs, nil
}

// fakeProber answers existence from a set of gone keys.
type fakeProber struct {
	mu     sync.Mutex
	gone   map[domain.DocumentKey]bool
	probed []domain.DocumentKey
}

func (f *fakeProber) Exists(_ context.Context, t domain.ObjectType, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := domain.DocumentKey{Type: t, ID: id}
	f.probed = append(f.probed, key)
	return !f.gone[key], nil
}
