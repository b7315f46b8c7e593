package zoom

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
)

func rolesHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/roles":
			fmt.Fprint(w, `{"roles":[
				{"id":"role-admin","name":"Admin","description":"Account admins","total_members":2},
				{"id":"role-member","name":"Member","description":"Everyone else","total_members":40}
			]}`)
		case "/roles/role-admin":
			fmt.Fprint(w, `{"id":"role-admin","privileges":["User:Read","ChatMessage:Read"]}`)
		case "/roles/role-member":
			fmt.Fprint(w, `{"id":"role-member","privileges":["User:Read"]}`)
		case "/roles/role-admin/members":
			fmt.Fprint(w, `{"members":[{"id":"u-1"},{"id":"u-2"},{"id":"u-1"}]}`)
		case "/roles/role-member/members":
			fmt.Fprint(w, `{"members":[]}`)
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	})
}

func TestAccountDirectoryChatAccessUserIDs(t *testing.T) {
	client, _ := newTestClient(t, rolesHandler(t))

	ids, err := NewAccountDirectory(client).ChatAccessUserIDs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"u-1", "u-2"}, ids,
		"only members of roles with the chat read privilege, deduplicated")
}

func TestRolesFetcher(t *testing.T) {
	client, _ := newTestClient(t, rolesHandler(t))

	scope := &driven.FetchScope{
		Schema:             domain.DefaultSchema(domain.ObjectRoles),
		PermissionsEnabled: true,
		SourceIdentities: map[string][]string{
			"u-1": {"one@corp.test"},
			"u-2": {"two@corp.test"},
		},
	}
	docs, err := NewRolesFetcher(client).Fetch(context.Background(), scope)
	require.NoError(t, err)

	require.Len(t, docs, 2)
	admin := docs[0]
	assert.Equal(t, "role-admin", admin.ID)
	assert.Equal(t, "Admin", admin.Title)
	assert.Equal(t, "Account admins", admin.Description)
	assert.Equal(t, "https://zoom.us/role#/detail/role-admin", admin.URL)
	assert.Contains(t, admin.Body, "Members: 2")
	assert.Equal(t, []string{"Role:Read", "one@corp.test", "two@corp.test"}, admin.AllowPermissions)
}

func TestRolesFetcherDegradesWhenMembersUnavailable(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/roles":
			fmt.Fprint(w, `{"roles":[{"id":"role-x","name":"X"}]}`)
		default:
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message":"insufficient scope"}`)
		}
	}))

	scope := &driven.FetchScope{
		Schema:             domain.DefaultSchema(domain.ObjectRoles),
		PermissionsEnabled: true,
	}
	docs, err := NewRolesFetcher(client).Fetch(context.Background(), scope)
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, []string{"Role:Read"}, docs[0].AllowPermissions,
		"member lookup failure degrades to the base capability tag")
}
