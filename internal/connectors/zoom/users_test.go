package zoom

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
	"github.com/custodia-labs/zoomsync/internal/core/ports/driven"
)

func TestUsersFetcherFiltersByWindow(t *testing.T) {
	scope := &driven.FetchScope{
		Schema: domain.DefaultSchema(domain.ObjectUsers),
		Window: domain.TimeRange{
			Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		Users: []domain.UserProfile{
			{ID: "u-new", FirstName: "Ada", LastName: "L", Email: "ada@corp.test", CreatedAt: "2025-06-01T00:00:00Z"},
			{ID: "u-old", FirstName: "Old", CreatedAt: "2020-01-01T00:00:00Z"},
			{ID: "u-unknown", FirstName: "NoTS"},
		},
	}

	docs, err := NewUsersFetcher().Fetch(context.Background(), scope)
	require.NoError(t, err)

	require.Len(t, docs, 2, "users created before the window are dropped, missing timestamps pass")
	assert.Equal(t, "u-new", docs[0].ID)
	assert.Equal(t, "Ada L", docs[0].Title)
	assert.Equal(t, "https://zoom.us/user/u-new", docs[0].URL)
	assert.Contains(t, docs[0].Body, "Email: ada@corp.test")
	assert.Equal(t, "u-unknown", docs[1].ID)
}

func TestTagPermissions(t *testing.T) {
	scope := &driven.FetchScope{
		PermissionsEnabled: true,
		SourceIdentities:   map[string][]string{"u-1": {"one@corp.test"}},
	}

	mapped := domain.Document{ID: "d-1", Type: domain.ObjectUsers}
	tagPermissions(&mapped, "u-1", scope)
	assert.Equal(t, []string{"User:Read", "one@corp.test"}, mapped.AllowPermissions)

	unmapped := domain.Document{ID: "d-2", Type: domain.ObjectRecordings}
	tagPermissions(&unmapped, "u-unknown", scope)
	assert.Equal(t, []string{"Recording:Read"}, unmapped.AllowPermissions,
		"an unmapped owner still gets the base capability tag")

	disabled := domain.Document{ID: "d-3", Type: domain.ObjectUsers}
	tagPermissions(&disabled, "u-1", &driven.FetchScope{})
	assert.Nil(t, disabled.AllowPermissions)
}
