package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
	"github.com/custodia-labs/zoomsync/internal/logger"
)

// localStore implements driven.LocalStore.
type localStore struct {
	store *Store
}

var _ driven.LocalStore = (*localStore)(nil)

// Load returns the persisted state. Query failures degrade to an empty
// state so a damaged database behaves like a first run.
func (l *localStore) Load(ctx context.Context) (domain.StorageState, error) {
	global, err := l.readKeys(ctx, "global_keys")
	if err != nil {
		logger.Warn("unable to read local storage, treating it as empty: %v", err)
		return domain.StorageState{}, nil
	}
	deleteKeys, err := l.readKeys(ctx, "delete_keys")
	if err != nil {
		logger.Warn("unable to read local storage, treating it as empty: %v", err)
		return domain.StorageState{}, nil
	}
	return domain.StorageState{GlobalKeys: global, DeleteKeys: deleteKeys}, nil
}

// Update atomically replaces the persisted state.
func (l *localStore) Update(ctx context.Context, state domain.StorageState) error {
	tx, err := l.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"global_keys", "delete_keys"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := insertKeys(ctx, tx, "global_keys", state.GlobalKeys); err != nil {
		return err
	}
	if err := insertKeys(ctx, tx, "delete_keys", state.DeleteKeys); err != nil {
		return err
	}
	return tx.Commit()
}

// StoreIndexedDocuments snapshots the current global keys into the delete
// keys and appends the records that were actually indexed.
func (l *localStore) StoreIndexedDocuments(ctx context.Context, fetched []domain.DocumentRecord, indexedIDs map[string]struct{}) error {
	tx, err := l.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin store: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM delete_keys"); err != nil {
		return fmt.Errorf("clear delete_keys: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO delete_keys (id, type, parent_id, created_at)
		SELECT id, type, parent_id, created_at FROM global_keys
	`); err != nil {
		return fmt.Errorf("snapshot global_keys: %w", err)
	}

	for _, rec := range fetched {
		if _, ok := indexedIDs[rec.ID]; !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO global_keys (id, type, parent_id, created_at)
			VALUES (?, ?, ?, ?)
		`, rec.ID, string(rec.Type), rec.ParentID, rec.CreatedAt); err != nil {
			return fmt.Errorf("append global key %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

func (l *localStore) readKeys(ctx context.Context, table string) ([]domain.DocumentRecord, error) {
	rows, err := l.store.db.QueryContext(ctx,
		"SELECT id, type, parent_id, created_at FROM "+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DocumentRecord
	for rows.Next() {
		var rec domain.DocumentRecord
		var typ string
		if err := rows.Scan(&rec.ID, &typ, &rec.ParentID, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Type = domain.ObjectType(typ)
		out = append(out, rec)
	}
	return out, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertKeys(ctx context.Context, tx execer, table string, records []domain.DocumentRecord) error {
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO "+table+" (id, type, parent_id, created_at) VALUES (?, ?, ?, ?)",
			rec.ID, string(rec.Type), rec.ParentID, rec.CreatedAt); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return nil
}
