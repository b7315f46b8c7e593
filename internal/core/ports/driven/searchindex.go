package driven

import (
	"context"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
)

// IndexResult is the per-document outcome of a bulk upsert. A document with
// a non-empty Errors list was rejected by the index and must not be recorded
// as indexed.
type IndexResult struct {
	ID     string   `json:"id"`
	Errors []string `json:"errors"`
}

// SearchIndex is the outbound port to the enterprise search index: document
// upsert/delete plus its ACL store.
type SearchIndex interface {
	// IndexDocuments upserts docs and returns one result per document.
	// A non-nil error means the whole call failed; per-item failures are
	// reported through IndexResult.Errors.
	IndexDocuments(ctx context.Context, docs []domain.Document) ([]IndexResult, error)

	// DeleteDocuments removes the given document ids from the index.
	DeleteDocuments(ctx context.Context, ids []string) error

	ListPermissions(ctx context.Context) ([]domain.UserPermissions, error)
	AddPermissions(ctx context.Context, user string, permissions []string) error
	RemovePermissions(ctx context.Context, user string, permissions []string) error

	// CreateContentSource provisions the content source documents are
	// uploaded to and returns its id. Used by the bootstrap command.
	CreateContentSource(ctx context.Context, name string) (string, error)
}
