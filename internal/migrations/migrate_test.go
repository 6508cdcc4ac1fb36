package migrations

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Simplici0/mercury/internal/db"
)

func TestUpIsRepeatable(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, Up(database))
	require.NoError(t, Up(database))

	version, err := Version(database)
	require.NoError(t, err)
	require.Equal(t, int64(2), version)

	for _, table := range []string{"ingredients", "recipes", "recipe_lines"} {
		var n int
		err := database.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
		require.NoError(t, err)
		require.Equal(t, 1, n, table)
	}
}
