package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRetryExhausted indicates the per-call retry budget was spent on
	// transient failures without a successful attempt.
	ErrRetryExhausted = errors.New("retry budget exceeded")

	// ErrSyncAborted indicates a sync run failed before its commit phase;
	// checkpoints and local storage were left untouched so the next run
	// re-covers the same window.
	ErrSyncAborted = errors.New("sync aborted before commit")

	// ErrPermissionSyncDisabled indicates permission sync was invoked while
	// the enable_document_permission flag is off.
	ErrPermissionSyncDisabled = errors.New("document permission sync is disabled")

	// ErrEmptyIdentityMapping indicates permission sync found no usable
	// identity mapping file.
	ErrEmptyIdentityMapping = errors.New("identity mapping file is missing or empty")
)
