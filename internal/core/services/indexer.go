package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
	"github.com/custodia-labs/zoomsync/internal/logger"
)

// MaxIndexPayloadBytes caps the serialized size of a single upsert call.
const MaxIndexPayloadBytes = 10_000_000

// Indexer is the indexing consumer shared by every worker in the indexing
// pool. Workers drain the queue concurrently; the accumulated id sets,
// checkpoint markers and error flag are guarded by a mutex.
type Indexer struct {
	queue    *Queue
	index    driven.SearchIndex
	maxBytes int

	mu          sync.Mutex
	generated   map[string]struct{}
	indexed     map[string]struct{}
	checkpoints []CheckpointMarker
	errOccurred bool
}

// NewIndexer creates an indexing consumer draining q into index.
func NewIndexer(q *Queue, index driven.SearchIndex) *Indexer {
	return &Indexer{
		queue:     q,
		index:     index,
		maxBytes:  MaxIndexPayloadBytes,
		generated: make(map[string]struct{}),
		indexed:   make(map[string]struct{}),
	}
}

// PerformSync is the worker loop run by each consumer goroutine. It pulls
// from the shared queue until it reads a close sentinel, batching documents
// under the item-count and byte ceilings before each upsert. A failed
// upsert flags the run and stops further indexing, but the worker keeps
// draining until its sentinel so producers blocked on the bounded queue can
// still finish and shut down.
func (ix *Indexer) PerformSync(ctx context.Context) error {
	var failure error
	open := true
	for open {
		var (
			batch []domain.Document
			size  int
		)
	drain:
		for len(batch) < BatchSize && size < ix.maxBytes {
			msg := ix.queue.Get()
			switch msg.Kind {
			case KindClose:
				logger.Debug("consumer read close sentinel, finishing up")
				open = false
				break drain
			case KindCheckpoint:
				ix.recordCheckpoint(msg.Checkpoint)
				break drain
			case KindDocuments:
				batch = append(batch, msg.Documents...)
				for _, doc := range msg.Documents {
					size += serializedSize(doc)
				}
			}
		}

		if failure != nil {
			continue
		}
		if err := ix.flush(ctx, batch); err != nil {
			ix.setError()
			failure = err
			logger.Error("indexing failed, draining the remaining queue: %v", err)
		}
	}
	return failure
}

// flush dedups the working batch and submits it in size-bounded chunks.
func (ix *Indexer) flush(ctx context.Context, batch []domain.Document) error {
	if len(batch) == 0 {
		return nil
	}
	batch = DeduplicateDocuments(batch)
	for _, chunk := range SplitIntoChunks(batch, BatchSize) {
		for _, sized := range SplitByByteBudget(chunk, ix.maxBytes) {
			if err := ix.indexBatch(ctx, sized); err != nil {
				return err
			}
		}
		ix.markGenerated(chunk)
	}
	return nil
}

// indexBatch performs one upsert call and records per-document outcomes.
// Per-item rejections are logged and excluded from the indexed set; a
// transport-level failure propagates.
func (ix *Indexer) indexBatch(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	results, err := ix.index.IndexDocuments(ctx, docs)
	if err != nil {
		return fmt.Errorf("index documents: %w", err)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, res := range results {
		if len(res.Errors) > 0 {
			logger.Error("unable to index document %s: %v", res.ID, res.Errors)
			continue
		}
		ix.indexed[res.ID] = struct{}{}
	}
	return nil
}

func (ix *Indexer) markGenerated(docs []domain.Document) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, doc := range docs {
		ix.generated[doc.ID] = struct{}{}
	}
}

func (ix *Indexer) recordCheckpoint(mark CheckpointMarker) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.checkpoints = append(ix.checkpoints, mark)
}

func (ix *Indexer) setError() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.errOccurred = true
}

// ErrorOccurred reports whether any worker failed. Checkpoints must not be
// committed for an errored run.
func (ix *Indexer) ErrorOccurred() bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.errOccurred
}

// GeneratedIDs returns the set of document ids the consumers attempted.
func (ix *Indexer) GeneratedIDs() map[string]struct{} {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	out := make(map[string]struct{}, len(ix.generated))
	for id := range ix.generated {
		out[id] = struct{}{}
	}
	return out
}

// IndexedIDs returns the set of document ids the index accepted.
func (ix *Indexer) IndexedIDs() map[string]struct{} {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	out := make(map[string]struct{}, len(ix.indexed))
	for id := range ix.indexed {
		out[id] = struct{}{}
	}
	return out
}

// Checkpoints returns the checkpoint markers the consumers drained.
func (ix *Indexer) Checkpoints() []CheckpointMarker {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	out := make([]CheckpointMarker, len(ix.checkpoints))
	copy(out, ix.checkpoints)
	return out
}
