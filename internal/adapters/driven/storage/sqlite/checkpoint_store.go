package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
)

// checkpointStore implements driven.CheckpointStore.
type checkpointStore struct {
	store *Store
}

var _ driven.CheckpointStore = (*checkpointStore)(nil)

// Window returns the [checkpoint, now) range for t, starting from floor
// when no checkpoint exists yet.
func (c *checkpointStore) Window(ctx context.Context, t domain.ObjectType, floor, now time.Time) (domain.TimeRange, error) {
	var raw string
	err := c.store.db.QueryRowContext(ctx,
		"SELECT ts FROM checkpoints WHERE object_type = ?", string(t)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TimeRange{Start: floor, End: now}, nil
	}
	if err != nil {
		return domain.TimeRange{}, fmt.Errorf("read %s checkpoint: %w", t, err)
	}
	start, err := domain.ParseTimestamp(raw)
	if err != nil {
		return domain.TimeRange{}, fmt.Errorf("parse %s checkpoint %q: %w", t, raw, err)
	}
	return domain.TimeRange{Start: start, End: now}, nil
}

// Set persists the checkpoint for t.
func (c *checkpointStore) Set(ctx context.Context, t domain.ObjectType, ts time.Time, kind domain.RunKind) error {
	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO checkpoints (object_type, ts, run_kind, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(object_type) DO UPDATE SET
			ts = excluded.ts,
			run_kind = excluded.run_kind,
			updated_at = CURRENT_TIMESTAMP
	`, string(t), domain.FormatTimestamp(ts), string(kind))
	if err != nil {
		return fmt.Errorf("set %s checkpoint: %w", t, err)
	}
	return nil
}
