package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/zoomsync/internal/config"
	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
	"github.com/custodia-labs/zoomsync/internal/logger"
)

// probeOrder lists the types verified with a direct per-id existence probe,
// in the order the probes run. Everything else in the delete-key snapshot is
// verified by re-fetching the type and diffing ids.
var probeOrder = []domain.ObjectType{
	domain.ObjectUsers,
	domain.ObjectRoles,
	domain.ObjectGroups,
	domain.ObjectMeetings,
}

// pruneOrder lists the retention-limited types in the order the pruning pass
// handles them after all probes and diffs are in.
var pruneOrder = []domain.ObjectType{
	domain.ObjectMeetings,
	domain.ObjectPastMeetings,
	domain.ObjectRecordings,
	domain.ObjectChats,
	domain.ObjectFiles,
}

// DeletionReconciler removes documents from the search index whose source
// object no longer exists upstream, working from the delete-key snapshot the
// last sync left in the local store.
type DeletionReconciler struct {
	cfg    *config.Config
	orch   *Orchestrator
	prober driven.ExistenceProber
	index  driven.SearchIndex
	local  driven.LocalStore
}

// NewDeletionReconciler wires a reconciler over the fetch orchestrator, the
// existence prober and the driven stores.
func NewDeletionReconciler(cfg *config.Config, orch *Orchestrator, prober driven.ExistenceProber, index driven.SearchIndex, local driven.LocalStore) *DeletionReconciler {
	return &DeletionReconciler{cfg: cfg, orch: orch, prober: prober, index: index, local: local}
}

// Run performs one deletion sync pass.
func (d *DeletionReconciler) Run(ctx context.Context) error {
	state, err := d.local.Load(ctx)
	if err != nil {
		return fmt.Errorf("load local storage: %w", err)
	}
	if len(state.DeleteKeys) == 0 {
		logger.Info("no documents to validate for deletion, skipping")
		return nil
	}
	logger.Info("validating %d stored document(s) against the source", len(state.DeleteKeys))

	now := time.Now().UTC()
	byType := groupRecords(state.DeleteKeys)
	deleted := make(map[domain.DocumentKey]struct{})
	pruned := make(map[domain.DocumentRecord]struct{})

	if err := d.probePhase(ctx, byType, now, deleted); err != nil {
		return err
	}
	if err := d.refetchPhase(ctx, byType, now, deleted); err != nil {
		return err
	}
	if err := d.probePastMeetings(ctx, byType[domain.ObjectPastMeetings], now, deleted); err != nil {
		return err
	}
	for _, t := range pruneOrder {
		pruneExpired(t, byType[t], now, deleted, pruned)
	}

	if err := d.applyDeletions(ctx, deleted); err != nil {
		return err
	}
	return d.updateState(ctx, state, deleted, pruned)
}

// probePhase checks the directly probeable types with one existence call
// per id. Records past the type's retention boundary are skipped here and
// left to the pruning pass.
func (d *DeletionReconciler) probePhase(ctx context.Context, byType map[domain.ObjectType][]domain.DocumentRecord, now time.Time, deleted map[domain.DocumentKey]struct{}) error {
	for _, t := range probeOrder {
		for _, rec := range byType[t] {
			if beyondRetention(rec, now) {
				continue
			}
			exists, err := d.prober.Exists(ctx, t, rec.ID)
			if err != nil {
				return fmt.Errorf("probe %s %s: %w", t, rec.ID, err)
			}
			if !exists {
				deleted[rec.Key()] = struct{}{}
			}
		}
	}
	return nil
}

// refetchPhase re-runs the fetchers for the diffable types over the
// configured window and marks every stored id the fresh pass no longer
// returned. The fetch fans out over user buckets exactly like a sync run,
// but the emitted documents are collected instead of queued.
func (d *DeletionReconciler) refetchPhase(ctx context.Context, byType map[domain.ObjectType][]domain.DocumentRecord, now time.Time, deleted map[domain.DocumentKey]struct{}) error {
	diffTypes := []domain.ObjectType{
		domain.ObjectRecordings,
		domain.ObjectChannels,
		domain.ObjectChats,
		domain.ObjectFiles,
	}
	var pending []domain.ObjectType
	for _, t := range diffTypes {
		if len(byType[t]) > 0 && d.cfg.ObjectEnabled(t) {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	fresh, err := d.refetch(ctx, pending, now)
	if err != nil {
		return err
	}

	for _, t := range pending {
		present := fresh[t]
		for _, rec := range byType[t] {
			if beyondRetention(rec, now) {
				continue
			}
			if _, ok := present[rec.ID]; !ok {
				deleted[rec.Key()] = struct{}{}
			}
		}
	}
	return nil
}

// refetch fetches the current id sets for the given types over the full
// configured window.
func (d *DeletionReconciler) refetch(ctx context.Context, types []domain.ObjectType, now time.Time) (map[domain.ObjectType]map[string]struct{}, error) {
	window := domain.TimeRange{Start: d.cfg.StartTimeValue(), End: d.cfg.EndTimeValue(now)}
	windows := make(map[domain.ObjectType]domain.TimeRange)
	wanted := make(map[domain.ObjectType]bool)
	for _, t := range types {
		windows[t] = window
		wanted[t] = true
	}
	base := driven.FetchScope{}
	if wanted[domain.ObjectChats] || wanted[domain.ObjectFiles] {
		ids, err := d.orch.directory.ChatAccessUserIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve chat access users: %w", err)
		}
		base.ChatUserIDs = ids
	}

	users, err := d.orch.directory.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	fresh := make(map[domain.ObjectType]map[string]struct{})
	for _, t := range types {
		fresh[t] = make(map[string]struct{})
	}
	var mu sync.Mutex
	emit := func(t domain.ObjectType, docs []domain.Document) error {
		if !wanted[t] {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		for _, doc := range docs {
			fresh[t][doc.ID] = struct{}{}
		}
		return nil
	}

	var wg sync.WaitGroup
	var errs errorList
	for _, bucket := range SplitIntoBuckets(users, d.cfg.ZoomSyncThreadCount) {
		scope := base
		scope.Users = bucket
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.orch.fetchForDiff(ctx, scope, windows, wanted, emit); err != nil {
				errs.append(err)
			}
		}()
	}
	wg.Wait()
	if err := errs.first(); err != nil {
		return nil, err
	}
	return fresh, nil
}

// probePastMeetings verifies past-meeting instances through the concluded
// endpoint of their parent meeting, one probe per unique parent id.
// Instances are not addressable one by one, so the parent probe is the only
// deletion signal they have.
func (d *DeletionReconciler) probePastMeetings(ctx context.Context, records []domain.DocumentRecord, now time.Time, deleted map[domain.DocumentKey]struct{}) error {
	gone := make(map[string]bool)
	for _, rec := range records {
		if rec.ParentID == "" || beyondRetention(rec, now) {
			continue
		}
		parentGone, probed := gone[rec.ParentID]
		if !probed {
			exists, err := d.prober.Exists(ctx, domain.ObjectPastMeetings, rec.ParentID)
			if err != nil {
				return fmt.Errorf("probe %s %s: %w", domain.ObjectPastMeetings, rec.ParentID, err)
			}
			parentGone = !exists
			gone[rec.ParentID] = parentGone
		}
		if parentGone {
			deleted[rec.Key()] = struct{}{}
		}
	}
	return nil
}

// pruneExpired decides the fate of records older than the type's upstream
// retention boundary, which can no longer be verified against the API:
//   - a record whose parent is still live is pruned from the bookkeeping
//     without an index call
//   - a record whose parent was found deleted is deleted with it, except in
//     the six-month case when its id occurs more than once in the snapshot;
//     a fresher record re-indexed that id, so it is pruned instead
func pruneExpired(t domain.ObjectType, records []domain.DocumentRecord, now time.Time, deleted map[domain.DocumentKey]struct{}, pruned map[domain.DocumentRecord]struct{}) {
	limit := t.RetentionLimit()
	if limit == domain.RetentionNone {
		return
	}
	counts := make(map[string]int, len(records))
	for _, rec := range records {
		counts[rec.ID]++
	}
	for _, rec := range records {
		if !beyondRetention(rec, now) {
			continue
		}
		if _, gone := deleted[rec.Key()]; gone {
			continue
		}
		if !parentDeleted(rec, deleted) {
			logger.Debug("pruning %s %s, past the retention window", rec.Type, rec.ID)
			pruned[rec] = struct{}{}
			continue
		}
		if limit == domain.RetentionSixMonths && counts[rec.ID] > 1 {
			pruned[rec] = struct{}{}
			continue
		}
		deleted[rec.Key()] = struct{}{}
	}
}

// parentDeleted reports whether the record's parent entity is in the
// deleted set, under any parent type.
func parentDeleted(rec domain.DocumentRecord, deleted map[domain.DocumentKey]struct{}) bool {
	if rec.ParentID == "" {
		return false
	}
	for key := range deleted {
		if key.ID == rec.ParentID {
			return true
		}
	}
	return false
}

// beyondRetention reports whether the record predates the upstream
// retention boundary for its type.
func beyondRetention(rec domain.DocumentRecord, now time.Time) bool {
	floor, limited := retentionFloor(rec.Type, now)
	if !limited {
		return false
	}
	created, err := domain.ParseTimestamp(rec.CreatedAt)
	if err != nil {
		return false
	}
	return created.Before(floor)
}

// retentionFloor returns the earliest timestamp the API can still report
// for t, and whether t is retention-limited at all.
func retentionFloor(t domain.ObjectType, now time.Time) (time.Time, bool) {
	switch t.RetentionLimit() {
	case domain.RetentionOneMonth:
		return now.AddDate(0, -1, 0), true
	case domain.RetentionSixMonths:
		return now.AddDate(0, -6, 0), true
	}
	return time.Time{}, false
}

// applyDeletions removes the deleted ids from the search index in bounded
// chunks.
func (d *DeletionReconciler) applyDeletions(ctx context.Context, deleted map[domain.DocumentKey]struct{}) error {
	if len(deleted) == 0 {
		logger.Info("every stored document still exists, nothing to delete")
		return nil
	}
	ids := make([]string, 0, len(deleted))
	for key := range deleted {
		ids = append(ids, key.ID)
	}
	logger.Info("deleting %d stale document(s) from the index", len(ids))
	for _, chunk := range SplitIntoChunks(ids, BatchSize) {
		if err := d.index.DeleteDocuments(ctx, chunk); err != nil {
			return fmt.Errorf("delete documents: %w", err)
		}
	}
	return nil
}

// updateState drops the deleted and pruned records from the global keys and
// clears the validated snapshot.
func (d *DeletionReconciler) updateState(ctx context.Context, state domain.StorageState, deleted map[domain.DocumentKey]struct{}, pruned map[domain.DocumentRecord]struct{}) error {
	kept := state.GlobalKeys[:0:0]
	for _, rec := range state.GlobalKeys {
		if _, gone := deleted[rec.Key()]; gone {
			continue
		}
		if _, dropped := pruned[rec]; dropped {
			continue
		}
		kept = append(kept, rec)
	}
	next := domain.StorageState{GlobalKeys: kept}
	if err := d.local.Update(ctx, next); err != nil {
		return fmt.Errorf("update local storage: %w", err)
	}
	return nil
}

// groupRecords buckets records by object type.
func groupRecords(records []domain.DocumentRecord) map[domain.ObjectType][]domain.DocumentRecord {
	out := make(map[domain.ObjectType][]domain.DocumentRecord)
	for _, rec := range records {
		out[rec.Type] = append(out[rec.Type], rec)
	}
	return out
}
