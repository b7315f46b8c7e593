package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/zoomsync/internal/config"
	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
	"github.com/custodia-labs/zoomsync/internal/logger"
)

// EmitFunc receives every document batch a fetch pass produces. The sync
// runner's emit enqueues; the deletion reconciler's emit collects.
type EmitFunc func(t domain.ObjectType, docs []domain.Document) error

// bucketOrder is the fetch sequence within one user bucket. Meetings run
// before past meetings because the latter consumes the meeting candidates
// the former collects into the scope.
var bucketOrder = []domain.ObjectType{
	domain.ObjectUsers,
	domain.ObjectMeetings,
	domain.ObjectPastMeetings,
	domain.ObjectRecordings,
	domain.ObjectChannels,
	domain.ObjectChats,
	domain.ObjectFiles,
}

// Orchestrator runs the fetch side of a sync: account-level objects once,
// then the per-user object types over one bucket of users at a time.
type Orchestrator struct {
	cfg       *config.Config
	fetchers  map[domain.ObjectType]driven.ObjectFetcher
	directory driven.Directory
}

// NewOrchestrator wires the fetchers and the account directory.
func NewOrchestrator(cfg *config.Config, fetchers map[domain.ObjectType]driven.ObjectFetcher, directory driven.Directory) *Orchestrator {
	return &Orchestrator{cfg: cfg, fetchers: fetchers, directory: directory}
}

// FetchAdminObjects fetches the account-level types (roles and groups) that
// are not partitioned across user buckets.
func (o *Orchestrator) FetchAdminObjects(ctx context.Context, base driven.FetchScope, emit EmitFunc) error {
	for _, t := range []domain.ObjectType{domain.ObjectRoles, domain.ObjectGroups} {
		if !o.cfg.ObjectEnabled(t) {
			continue
		}
		fetcher, ok := o.fetchers[t]
		if !ok {
			return fmt.Errorf("no fetcher registered for %s", t)
		}
		scope := base
		scope.Schema = o.cfg.Projection(t)
		docs, err := fetcher.Fetch(ctx, &scope)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", t, err)
		}
		if err := emit(t, docs); err != nil {
			return err
		}
	}
	return nil
}

// FetchBucket fetches every enabled user-scoped type for one bucket of
// users, in dependency order. The scope is shared across the pass so the
// meetings fetcher can hand its candidates to the past-meetings fetcher.
func (o *Orchestrator) FetchBucket(ctx context.Context, base driven.FetchScope, windows map[domain.ObjectType]domain.TimeRange, emit EmitFunc) error {
	scope := base
	for _, t := range bucketOrder {
		if !o.cfg.ObjectEnabled(t) {
			continue
		}
		fetcher, ok := o.fetchers[t]
		if !ok {
			return fmt.Errorf("no fetcher registered for %s", t)
		}
		scope.Schema = o.cfg.Projection(t)
		scope.Window = windows[t]
		docs, err := fetcher.Fetch(ctx, &scope)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", t, err)
		}
		if err := emit(t, docs); err != nil {
			return err
		}
	}
	return nil
}

// fetchForDiff is FetchBucket narrowed to the wanted types. Deletion sync
// uses it to rebuild the current id set of the diff-verified types without
// paying for the rest of the pass.
func (o *Orchestrator) fetchForDiff(ctx context.Context, base driven.FetchScope, windows map[domain.ObjectType]domain.TimeRange, wanted map[domain.ObjectType]bool, emit EmitFunc) error {
	scope := base
	for _, t := range bucketOrder {
		if !wanted[t] || !o.cfg.ObjectEnabled(t) {
			continue
		}
		fetcher, ok := o.fetchers[t]
		if !ok {
			return fmt.Errorf("no fetcher registered for %s", t)
		}
		scope.Schema = o.cfg.Projection(t)
		scope.Window = windows[t]
		docs, err := fetcher.Fetch(ctx, &scope)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", t, err)
		}
		if err := emit(t, docs); err != nil {
			return err
		}
	}
	return nil
}

// SyncRunner drives a full or incremental sync end to end: it computes the
// per-type time windows, starts the indexing consumers, fans the user list
// out over fetch workers, and commits checkpoints and local bookkeeping only
// when every consumer finished clean.
type SyncRunner struct {
	cfg         *config.Config
	orch        *Orchestrator
	index       driven.SearchIndex
	local       driven.LocalStore
	checkpoints driven.CheckpointStore
}

// NewSyncRunner wires a runner over the orchestrator and the driven stores.
func NewSyncRunner(cfg *config.Config, orch *Orchestrator, index driven.SearchIndex, local driven.LocalStore, checkpoints driven.CheckpointStore) *SyncRunner {
	return &SyncRunner{cfg: cfg, orch: orch, index: index, local: local, checkpoints: checkpoints}
}

// Run executes one sync of the given kind.
func (s *SyncRunner) Run(ctx context.Context, kind domain.RunKind) error {
	runID := uuid.NewString()
	logger.Info("starting %s sync, run id %s", kind, runID)

	now := time.Now().UTC()
	windows, err := s.windows(ctx, kind, now)
	if err != nil {
		return err
	}

	base, err := s.baseScope(ctx)
	if err != nil {
		return err
	}

	queue := NewQueue(0)
	indexer := NewIndexer(queue, s.index)

	consumers := s.cfg.EnterpriseSearchSyncThreadCount
	var consumerWG sync.WaitGroup
	var consumerErrs errorList
	for i := 0; i < consumers; i++ {
		consumerWG.Add(1)
		go func() {
			defer consumerWG.Done()
			if err := indexer.PerformSync(ctx); err != nil {
				consumerErrs.append(err)
			}
		}()
	}

	var (
		recordMu sync.Mutex
		fetched  []domain.DocumentRecord
	)
	emit := func(t domain.ObjectType, docs []domain.Document) error {
		recordMu.Lock()
		for _, doc := range docs {
			fetched = append(fetched, doc.Record())
		}
		recordMu.Unlock()
		queue.PutDocuments(docs)
		return nil
	}

	produceErr := s.produce(ctx, base, windows, kind, queue, emit)

	// Consumers always get their close sentinels, even on a failed produce
	// phase, so the pool can drain and terminate.
	for i := 0; i < consumers; i++ {
		queue.PutClose()
	}
	consumerWG.Wait()

	if produceErr != nil {
		return fmt.Errorf("%w: %v", domain.ErrSyncAborted, produceErr)
	}
	if err := consumerErrs.first(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSyncAborted, err)
	}
	if indexer.ErrorOccurred() {
		return fmt.Errorf("%w: indexing pool reported errors", domain.ErrSyncAborted)
	}

	if err := s.commit(ctx, indexer, fetched); err != nil {
		return err
	}

	logger.Info("%s sync complete: attempted %d document(s), indexed %d",
		kind, len(indexer.GeneratedIDs()), len(indexer.IndexedIDs()))
	return nil
}

// produce runs the fetch side: admin objects first, then the user buckets in
// parallel, then one checkpoint marker per windowed type.
func (s *SyncRunner) produce(ctx context.Context, base driven.FetchScope, windows map[domain.ObjectType]domain.TimeRange, kind domain.RunKind, queue *Queue, emit EmitFunc) error {
	if err := s.orch.FetchAdminObjects(ctx, base, emit); err != nil {
		return err
	}

	users, err := s.orch.directory.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	logger.Info("partitioning %d user(s) across %d fetch worker(s)",
		len(users), s.cfg.ZoomSyncThreadCount)

	var producerWG sync.WaitGroup
	var producerErrs errorList
	for _, bucket := range SplitIntoBuckets(users, s.cfg.ZoomSyncThreadCount) {
		scope := base
		scope.Users = bucket
		producerWG.Add(1)
		go func() {
			defer producerWG.Done()
			if err := s.orch.FetchBucket(ctx, scope, windows, emit); err != nil {
				producerErrs.append(err)
			}
		}()
	}
	producerWG.Wait()
	if err := producerErrs.first(); err != nil {
		return err
	}

	// Every batch of every type has been enqueued; the markers may now
	// trail them.
	for t, window := range windows {
		queue.PutCheckpoint(t, window.End, kind)
	}
	return nil
}

// commit persists checkpoints and local bookkeeping after a clean run.
func (s *SyncRunner) commit(ctx context.Context, indexer *Indexer, fetched []domain.DocumentRecord) error {
	for _, mark := range indexer.Checkpoints() {
		if err := s.checkpoints.Set(ctx, mark.ObjectType, mark.Timestamp, mark.RunKind); err != nil {
			return fmt.Errorf("set %s checkpoint: %w", mark.ObjectType, err)
		}
	}
	if err := s.local.StoreIndexedDocuments(ctx, fetched, indexer.IndexedIDs()); err != nil {
		return fmt.Errorf("store indexed documents: %w", err)
	}
	return nil
}

// windows computes the per-type fetch window. A full sync always covers the
// configured range; an incremental one resumes from the stored checkpoint.
func (s *SyncRunner) windows(ctx context.Context, kind domain.RunKind, now time.Time) (map[domain.ObjectType]domain.TimeRange, error) {
	out := make(map[domain.ObjectType]domain.TimeRange)
	floor := s.cfg.StartTimeValue()
	for _, t := range s.cfg.ConfiguredObjects() {
		if !t.TimeWindowed() {
			continue
		}
		if kind == domain.RunFull {
			out[t] = domain.TimeRange{Start: floor, End: s.cfg.EndTimeValue(now)}
			continue
		}
		window, err := s.checkpoints.Window(ctx, t, floor, now)
		if err != nil {
			return nil, fmt.Errorf("load %s checkpoint: %w", t, err)
		}
		out[t] = window
	}
	return out, nil
}

// baseScope builds the scope fields shared by every fetch pass of the run:
// the permission identities and the chat-capable user set.
func (s *SyncRunner) baseScope(ctx context.Context) (driven.FetchScope, error) {
	base := driven.FetchScope{PermissionsEnabled: s.cfg.EnableDocumentPermission}

	if s.cfg.EnableDocumentPermission {
		mappings, err := config.LoadIdentityMappings(s.cfg.Zoom.UserMappingFile)
		if err != nil {
			if errors.Is(err, domain.ErrEmptyIdentityMapping) {
				logger.Warn("document permissions enabled but %s holds no mappings, syncing without permission tags",
					s.cfg.Zoom.UserMappingFile)
				base.PermissionsEnabled = false
			} else {
				return base, fmt.Errorf("load identity mappings: %w", err)
			}
		} else {
			base.SourceIdentities = mappings.SourceToIndex
		}
	}

	if s.cfg.ObjectEnabled(domain.ObjectChats) || s.cfg.ObjectEnabled(domain.ObjectFiles) {
		ids, err := s.orch.directory.ChatAccessUserIDs(ctx)
		if err != nil {
			return base, fmt.Errorf("resolve chat access users: %w", err)
		}
		base.ChatUserIDs = ids
	}
	return base, nil
}

// errorList collects errors from a goroutine pool.
type errorList struct {
	mu   sync.Mutex
	errs []error
}

func (e *errorList) append(err error) {
	e.mu.Lock()
	e.errs = append(e.errs, err)
	e.mu.Unlock()
}

func (e *errorList) first() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.errs) == 0 {
		return nil
	}
	for _, err := range e.errs[1:] {
		logger.Error("additional sync error: %v", err)
	}
	return e.errs[0]
}
