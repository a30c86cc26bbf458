package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mandi-backend/migrations"
)

func TestPendingOrdersAndSkips(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/002_add_index.sql":  {Data: []byte("SELECT 1")},
		"sql/001_init.sql":       {Data: []byte("SELECT 1")},
		"sql/003_reset_data.sql": {Data: []byte("TRUNCATE x")},
		"sql/README.md":          {Data: []byte("notes")},
	}
	m := NewMigratorWithFS(nil, fsys, "sql", zap.NewNop())

	files, err := m.Pending(map[string]bool{})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_add_index.sql"}, files)

	files, err = m.Pending(map[string]bool{"001_init.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"002_add_index.sql"}, files)
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	m := NewMigratorWithFS(nil, migrations.FS, ".", zap.NewNop())
	files, err := m.Pending(nil)
	require.NoError(t, err)
	assert.Contains(t, files, "001_init.sql")
}
