package zoom

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
)

// memCredentials is an in-memory driven.CredentialStore.
type memCredentials struct {
	creds driven.Credentials
	saves int
}

func (m *memCredentials) LoadCredentials(context.Context) (driven.Credentials, error) {
	return m.creds, nil
}

func (m *memCredentials) SaveCredentials(_ context.Context, creds driven.Credentials) error {
	m.creds = creds
	m.saves++
	return nil
}

func newTestAuthenticator(t *testing.T, handler http.Handler, store driven.CredentialStore) *Authenticator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	auth := NewAuthenticator("client-id", "client-secret", "auth-code-1", "https://localhost/callback", store)
	auth.conf.Endpoint.TokenURL = srv.URL + "/oauth/token"
	return auth
}

func TestAuthenticatorReturnsCachedToken(t *testing.T) {
	store := &memCredentials{creds: driven.Credentials{
		AccessToken: "cached-token",
		Expiry:      time.Now().Add(time.Hour),
	}}
	auth := newTestAuthenticator(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("a valid cached token must not hit the token endpoint")
	}), store)

	token, err := auth.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached-token", token)
}

func TestAuthenticatorRollsRefreshTokenForward(t *testing.T) {
	store := &memCredentials{creds: driven.Credentials{
		AccessToken:  "expired-token",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(-time.Hour),
	}}
	auth := newTestAuthenticator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
		assert.Equal(t, "refresh-1", r.FormValue("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"access-2","refresh_token":"refresh-2","token_type":"bearer","expires_in":3600}`)
	}), store)

	token, err := auth.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "access-2", token)
	assert.Equal(t, "refresh-2", store.creds.RefreshToken, "the rolled refresh token is persisted")
}

func TestAuthenticatorFallsBackToAuthorizationCode(t *testing.T) {
	store := &memCredentials{creds: driven.Credentials{
		RefreshToken: "revoked-refresh",
	}}
	auth := newTestAuthenticator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.FormValue("grant_type") == "refresh_token" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant"}`)
			return
		}
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		assert.Equal(t, "auth-code-1", r.FormValue("code"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"access-fresh","refresh_token":"refresh-fresh","token_type":"bearer","expires_in":3600}`)
	}), store)

	token, err := auth.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "access-fresh", token)
	assert.Equal(t, "refresh-fresh", store.creds.RefreshToken)
	assert.GreaterOrEqual(t, store.saves, 2, "the revoked state is wiped before the fresh pair is saved")
}

func TestAuthenticatorReportsRejectedAuthorizationCode(t *testing.T) {
	auth := newTestAuthenticator(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	}), &memCredentials{})

	_, err := auth.Token(context.Background())
	require.Error(t, err)

	var credErr *CredentialError
	require.True(t, errors.As(err, &credErr))
	assert.Equal(t, "zoom.authorization_code", credErr.Key)
}
