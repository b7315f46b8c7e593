package services

import (
	"time"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/logger"
)

// BatchSize is the ceiling on documents per queue batch and per index
// upsert or delete call.
const BatchSize = 100

// defaultQueueCapacity bounds the number of in-flight queue messages so a
// fast producer pool cannot hold an unbounded backlog in memory.
const defaultQueueCapacity = 64

// MessageKind tags the queue's message union.
type MessageKind int

const (
	// KindDocuments carries a batch of at most BatchSize documents.
	KindDocuments MessageKind = iota
	// KindCheckpoint marks that every batch of an object type enqueued by
	// its producer precedes it. Never merged with document batches.
	KindCheckpoint
	// KindClose tells one consumer to stop pulling after it finishes the
	// work already drained.
	KindClose
)

// CheckpointMarker is the payload of a KindCheckpoint message.
type CheckpointMarker struct {
	ObjectType domain.ObjectType
	Timestamp  time.Time
	RunKind    domain.RunKind
}

// Message is the tagged union moved through the work queue.
type Message struct {
	Kind       MessageKind
	Documents  []domain.Document
	Checkpoint CheckpointMarker
}

// Queue is the bounded FIFO decoupling the fetch pool from the indexing
// pool. It is safe for concurrent producers and consumers; Get blocks until
// a message is available.
type Queue struct {
	ch chan Message
}

// NewQueue creates a queue with the given capacity; capacity <= 0 uses the
// default.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}
	return &Queue{ch: make(chan Message, capacity)}
}

// Put enqueues a message, blocking while the queue is full.
func (q *Queue) Put(msg Message) {
	q.ch <- msg
}

// Get dequeues the next message, blocking until one is available.
func (q *Queue) Get() Message {
	return <-q.ch
}

// PutDocuments splits docs into batches of at most BatchSize and enqueues
// each as its own message.
func (q *Queue) PutDocuments(docs []domain.Document) {
	if len(docs) == 0 {
		return
	}
	for _, chunk := range SplitIntoChunks(docs, BatchSize) {
		q.Put(Message{Kind: KindDocuments, Documents: chunk})
	}
	logger.Debug("queued %d document(s)", len(docs))
}

// PutCheckpoint enqueues a checkpoint marker for one object type. Producers
// call this only after all of the type's document batches are enqueued.
func (q *Queue) PutCheckpoint(t domain.ObjectType, ts time.Time, kind domain.RunKind) {
	q.Put(Message{Kind: KindCheckpoint, Checkpoint: CheckpointMarker{
		ObjectType: t,
		Timestamp:  ts,
		RunKind:    kind,
	}})
}

// PutClose enqueues one close sentinel; producers send one per consumer.
func (q *Queue) PutClose() {
	q.Put(Message{Kind: KindClose})
}
