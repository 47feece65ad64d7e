package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquagem-backend/migrations"
)

func TestPending_OrderAndSkips(t *testing.T) {
	source := fstest.MapFS{
		"003_c.sql":       {Data: []byte("SELECT 3")},
		"001_a.sql":       {Data: []byte("SELECT 1")},
		"002_b.sql":       {Data: []byte("SELECT 2")},
		"900_reset.sql":   {Data: []byte("DROP TABLE users")},
		"README.md":       {Data: []byte("docs")},
		"archive/004.sql": {Data: []byte("SELECT 4")},
	}

	files, err := Pending(source, map[string]bool{"002_b.sql": true})

	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "003_c.sql"}, files)
}

func TestPending_EmbeddedMigrations(t *testing.T) {
	files, err := Pending(migrations.FS, nil)

	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001_users.sql", files[0])
}
