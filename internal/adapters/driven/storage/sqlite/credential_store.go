package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
)

// credentialStore implements driven.CredentialStore with a single row.
type credentialStore struct {
	store *Store
}

var _ driven.CredentialStore = (*credentialStore)(nil)

// LoadCredentials returns the persisted credential state; absent state is a
// zero value, not an error.
func (c *credentialStore) LoadCredentials(ctx context.Context) (driven.Credentials, error) {
	var creds driven.Credentials
	var expiry string
	err := c.store.db.QueryRowContext(ctx,
		"SELECT access_token, refresh_token, expiry FROM credentials WHERE id = 1").
		Scan(&creds.AccessToken, &creds.RefreshToken, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return driven.Credentials{}, nil
	}
	if err != nil {
		return driven.Credentials{}, fmt.Errorf("load credentials: %w", err)
	}
	if expiry != "" {
		if t, err := time.Parse(time.RFC3339, expiry); err == nil {
			creds.Expiry = t
		}
	}
	return creds, nil
}

// SaveCredentials upserts the credential state.
func (c *credentialStore) SaveCredentials(ctx context.Context, creds driven.Credentials) error {
	var expiry string
	if !creds.Expiry.IsZero() {
		expiry = creds.Expiry.UTC().Format(time.RFC3339)
	}
	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO credentials (id, access_token, refresh_token, expiry)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expiry = excluded.expiry
	`, creds.AccessToken, creds.RefreshToken, expiry)
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}
