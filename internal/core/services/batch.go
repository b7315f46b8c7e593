package services

import (
	"encoding/json"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/logger"
)

// SplitIntoBuckets distributes items round-robin over at most total
// buckets. Every input appears in exactly one bucket, assignment is
// deterministic for a fixed bucket count and input order, and exactly total
// buckets are produced whenever len(items) >= total.
func SplitIntoBuckets[T any](items []T, total int) [][]T {
	if len(items) == 0 || total <= 0 {
		return nil
	}
	groups := total
	if len(items) < groups {
		groups = len(items)
	}
	buckets := make([][]T, groups)
	for i, item := range items {
		buckets[i%groups] = append(buckets[i%groups], item)
	}
	return buckets
}

// SplitIntoChunks splits items into consecutive chunks of at most size
// elements.
func SplitIntoChunks[T any](items []T, size int) [][]T {
	if len(items) == 0 || size <= 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// SplitByByteBudget re-splits docs so no chunk's cumulative serialized size
// exceeds maxBytes. A single document that alone exceeds the ceiling has
// its body dropped, is re-measured, and is placed alone in its own chunk.
func SplitByByteBudget(docs []domain.Document, maxBytes int) [][]domain.Document {
	var (
		chunks  [][]domain.Document
		current []domain.Document
		size    int
	)
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, current)
			current = nil
			size = 0
		}
	}
	for _, doc := range docs {
		docSize := serializedSize(doc)
		if docSize > maxBytes {
			logger.Warn("document %s/%s exceeds the %d byte ceiling; dropping its body",
				doc.Type, doc.ID, maxBytes)
			doc.Body = ""
			docSize = serializedSize(doc)
			flush()
			chunks = append(chunks, []domain.Document{doc})
			continue
		}
		if size+docSize > maxBytes {
			flush()
		}
		current = append(current, doc)
		size += docSize
	}
	flush()
	return chunks
}

// DeduplicateDocuments removes documents sharing a (type, id) key,
// preserving the first occurrence.
func DeduplicateDocuments(docs []domain.Document) []domain.Document {
	seen := make(map[domain.DocumentKey]struct{}, len(docs))
	out := docs[:0:0]
	for _, doc := range docs {
		if _, ok := seen[doc.Key()]; ok {
			continue
		}
		seen[doc.Key()] = struct{}{}
		out = append(out, doc)
	}
	return out
}

func serializedSize(doc domain.Document) int {
	b, err := json.Marshal(doc)
	if err != nil {
		return 0
	}
	return len(b)
}
