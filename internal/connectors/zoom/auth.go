package zoom

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
	"github.com/custodia-labs/zoomsync/internal/logger"
)

// Zoom OAuth endpoints.
const (
	AuthURL  = "https://zoom.us/oauth/authorize"
	TokenURL = "https://zoom.us/oauth/token"

	// expirySlack renews tokens slightly before the reported expiry so an
	// in-flight request never carries a token about to lapse.
	expirySlack = time.Minute
)

// Authenticator implements driven.TokenProvider for the Zoom OAuth app.
// The first run exchanges the configured authorization code; afterwards the
// persisted refresh token is rolled forward. All state transitions are
// serialized behind the mutex so concurrent fetch workers never race a
// refresh.
type Authenticator struct {
	conf     *oauth2.Config
	store    driven.CredentialStore
	authCode string

	mu      sync.Mutex
	current driven.Credentials
}

// NewAuthenticator builds the token provider from the OAuth app settings.
func NewAuthenticator(clientID, clientSecret, authCode, redirectURI string, store driven.CredentialStore) *Authenticator {
	return &Authenticator{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:  AuthURL,
				TokenURL: TokenURL,
			},
		},
		store:    store,
		authCode: authCode,
	}
}

// Token returns a valid access token, renewing it when missing or within
// the expiry slack.
func (a *Authenticator) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current.AccessToken == "" {
		if creds, err := a.store.LoadCredentials(ctx); err == nil {
			a.current = creds
		}
	}
	if a.current.AccessToken != "" && time.Now().Before(a.current.Expiry.Add(-expirySlack)) {
		return a.current.AccessToken, nil
	}
	return a.renewLocked(ctx)
}

// Refresh discards the cached token and fetches a new one. It is the 401
// recovery path; a request that still fails afterwards carries a terminal
// credential problem.
func (a *Authenticator) Refresh(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current.AccessToken = ""
	return a.renewLocked(ctx)
}

// renewLocked rolls the refresh token forward, falling back to a fresh
// authorization code exchange when the refresh token is rejected. The
// caller holds the mutex.
func (a *Authenticator) renewLocked(ctx context.Context) (string, error) {
	if a.current.RefreshToken == "" {
		if creds, err := a.store.LoadCredentials(ctx); err == nil && creds.RefreshToken != "" {
			a.current = creds
		}
	}

	if a.current.RefreshToken != "" {
		tok, err := a.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: a.current.RefreshToken}).Token()
		if err == nil {
			return a.adoptLocked(ctx, tok)
		}
		// A rejected refresh token is unrecoverable state; wipe it and
		// try the configured authorization code once.
		logger.Warn("stored refresh token rejected, retrying with the configured authorization code: %v", err)
		a.current = driven.Credentials{}
		if saveErr := a.store.SaveCredentials(ctx, a.current); saveErr != nil {
			logger.Error("unable to wipe stored credentials: %v", saveErr)
		}
	}

	tok, err := a.conf.Exchange(ctx, a.authCode)
	if err != nil {
		return "", &CredentialError{Key: "zoom.authorization_code", Err: err}
	}
	return a.adoptLocked(ctx, tok)
}

// adoptLocked stores the freshly minted token pair and returns the access
// token.
func (a *Authenticator) adoptLocked(ctx context.Context, tok *oauth2.Token) (string, error) {
	a.current = driven.Credentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if err := a.store.SaveCredentials(ctx, a.current); err != nil {
		return "", fmt.Errorf("save credentials: %w", err)
	}
	return a.current.AccessToken, nil
}
