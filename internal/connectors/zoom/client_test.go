package zoom

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
)

// staticTokens is a TokenProvider that hands out a fixed token and swaps it
// on Refresh.
type staticTokens struct {
	mu        sync.Mutex
	token     string
	refreshed int
}

func (s *staticTokens) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *staticTokens) Refresh(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshed++
	s.token = "refreshed-token"
	return s.token, nil
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *staticTokens) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	tokens := &staticTokens{token: "initial-token"}
	client := NewClient(tokens, 1)
	client.SetBaseURL(srv.URL)
	return client, tokens
}

func TestClientListUsersPagination(t *testing.T) {
	var tokens []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, defaultPageSize, r.URL.Query().Get("page_size"))
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		tokens = append(tokens, r.URL.Query().Get("next_page_token"))
		if r.URL.Query().Get("next_page_token") == "" {
			fmt.Fprint(w, `{"next_page_token":"page-2","users":[{"id":"u-1","email":"one@corp.test"}]}`)
			return
		}
		fmt.Fprint(w, `{"users":[{"id":"u-2","email":"two@corp.test"}]}`)
	}))

	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)

	require.Len(t, users, 2)
	assert.Equal(t, "u-1", users[0].ID)
	assert.Equal(t, "u-2", users[1].ID)
	assert.Equal(t, []string{"", "page-2"}, tokens, "second request carries the page token")
}

func TestClientRefreshesTokenOn401(t *testing.T) {
	var seen []string
	client, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		seen = append(seen, auth)
		if auth != "Bearer refreshed-token" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"access token is expired"}`)
			return
		}
		fmt.Fprint(w, `{"users":[{"id":"u-1"}]}`)
	}))

	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)

	require.Len(t, users, 1)
	assert.Equal(t, 1, tokens.refreshed)
	assert.Equal(t, []string{"Bearer initial-token", "Bearer refreshed-token"}, seen)
}

func TestClientExists(t *testing.T) {
	status := http.StatusOK
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		if status >= 300 {
			fmt.Fprint(w, `{"message":"does not exist"}`)
		} else {
			fmt.Fprint(w, `{"id":"x"}`)
		}
	}))

	cases := []struct {
		name   string
		typ    domain.ObjectType
		status int
		exists bool
		fails  bool
	}{
		{"present user", domain.ObjectUsers, 200, true, false},
		{"deleted user", domain.ObjectUsers, 404, false, false},
		{"deactivated user", domain.ObjectUsers, 400, false, false},
		{"unknown role answers 300", domain.ObjectRoles, 300, false, false},
		{"role 404 is not a deletion signal", domain.ObjectRoles, 404, false, true},
		{"gone meeting", domain.ObjectMeetings, 404, false, false},
		{"concluded meeting still retrievable", domain.ObjectPastMeetings, 200, true, false},
		{"never-held meeting", domain.ObjectPastMeetings, 404, false, false},
		{"not-yet-held meeting answers 400", domain.ObjectPastMeetings, 400, false, false},
		{"server error propagates", domain.ObjectGroups, 503, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status = tc.status
			exists, err := client.Exists(context.Background(), tc.typ, "some-id")
			if tc.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.exists, exists)
		})
	}

	t.Run("unprobeable type is rejected", func(t *testing.T) {
		_, err := client.Exists(context.Background(), domain.ObjectRecordings, "r-1")
		require.Error(t, err)
	})
}

func TestClientErrorCarriesMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"code":409,"message":"user already exists"}`)
	}))

	_, err := client.ListUsers(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.StatusCode)
	assert.Equal(t, "user already exists", apiErr.Message)
}
