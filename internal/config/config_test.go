package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zoomsync.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const validConfig = `
zoom:
  client_id: client
  client_secret: secret
  authorization_code: code
  redirect_uri: https://localhost:8080
enterprise_search:
  host_url: http://localhost:3002
  api_key: key
  source_id: source
objects:
  users: {}
  meetings:
    include_fields: [topic]
start_time: "2025-01-01T00:00:00Z"
`

func TestLoad(t *testing.T) {
	t.Run("valid file with defaults applied", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, validConfig))
		require.NoError(t, err)

		assert.Equal(t, 5, cfg.ZoomSyncThreadCount)
		assert.Equal(t, 5, cfg.EnterpriseSearchSyncThreadCount)
		assert.Equal(t, 3, cfg.RetryCount)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.NotEmpty(t, cfg.DataDirectory)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
		assert.Error(t, err)
	})

	t.Run("missing required key names the key", func(t *testing.T) {
		content := `
zoom:
  client_id: client
  client_secret: secret
  redirect_uri: https://localhost:8080
enterprise_search:
  host_url: http://localhost:3002
  api_key: key
start_time: "2025-01-01T00:00:00Z"
`
		_, err := Load(writeConfig(t, content))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), "zoom.authorization_code")
	})

	t.Run("unknown object type is rejected", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, validConfig))
		require.NoError(t, err)
		cfg.Objects["webinars"] = domain.FieldFilter{}

		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "objects.webinars")
	})

	t.Run("include and exclude together are rejected", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, validConfig))
		require.NoError(t, err)
		cfg.Objects["users"] = domain.FieldFilter{
			Include: []string{"first_name"},
			Exclude: []string{"created_at"},
		}

		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "objects.users")
	})

	t.Run("malformed start_time is rejected", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, validConfig))
		require.NoError(t, err)
		cfg.StartTime = "January 2025"

		assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidInput)
	})
}

func TestConfiguredObjects(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	t.Run("canonical order regardless of yaml order", func(t *testing.T) {
		assert.Equal(t,
			[]domain.ObjectType{domain.ObjectUsers, domain.ObjectMeetings},
			cfg.ConfiguredObjects())
	})

	t.Run("enabled check", func(t *testing.T) {
		assert.True(t, cfg.ObjectEnabled(domain.ObjectUsers))
		assert.False(t, cfg.ObjectEnabled(domain.ObjectRecordings))
	})

	t.Run("projection honours the filter", func(t *testing.T) {
		p := cfg.Projection(domain.ObjectMeetings)
		assert.Equal(t, "topic", p["title"])
		assert.NotContains(t, p, "created_at")
	})

	t.Run("nil objects enables every type", func(t *testing.T) {
		all := *cfg
		all.Objects = nil
		ApplyDefaults(&all)
		assert.Equal(t, domain.AllObjectTypes(), all.ConfiguredObjects())
	})
}
