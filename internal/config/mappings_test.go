package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zoomsync/internal/core/domain"
)

func TestLoadIdentityMappings(t *testing.T) {
	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "mappings.csv")
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
		return path
	}

	t.Run("both directions are built", func(t *testing.T) {
		m, err := LoadIdentityMappings(write(t, "zoom-1,alice@corp.example\nzoom-1,alice.admin@corp.example\nzoom-2,bob@corp.example\n"))
		require.NoError(t, err)

		assert.Equal(t, []string{"alice@corp.example", "alice.admin@corp.example"}, m.SourceToIndex["zoom-1"])
		assert.Equal(t, []string{"zoom-2"}, m.IndexToSource["bob@corp.example"])
	})

	t.Run("short rows are skipped", func(t *testing.T) {
		m, err := LoadIdentityMappings(write(t, "lonely\nzoom-1,alice@corp.example\n"))
		require.NoError(t, err)
		assert.Len(t, m.SourceToIndex, 1)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := LoadIdentityMappings(write(t, ""))
		assert.ErrorIs(t, err, domain.ErrEmptyIdentityMapping)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadIdentityMappings(filepath.Join(t.TempDir(), "absent.csv"))
		assert.ErrorIs(t, err, domain.ErrEmptyIdentityMapping)
	})

	t.Run("unset path", func(t *testing.T) {
		_, err := LoadIdentityMappings("")
		assert.ErrorIs(t, err, domain.ErrEmptyIdentityMapping)
	})
}
