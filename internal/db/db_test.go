package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	database := NewTestDB(t)

	require.NoError(t, Migrate(ctx, database))

	v, err := Version(ctx, database)
	require.NoError(t, err)
	require.Equal(t, CollectionVersion, v)
}

func TestSchemaRejectsInvalidRows(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(`INSERT INTO items (id, name, category, bar_qty, updated_at)
		VALUES ('a', 'Cola', 'Concessions', -1, 0)`)
	require.Error(t, err, "negative bar quantity must violate the schema")

	_, err = database.Exec(`INSERT INTO items (id, name, category, backstock_min, backstock_max, updated_at)
		VALUES ('b', 'Cola', 'Concessions', 5, 2, 0)`)
	require.Error(t, err, "backstock_max below backstock_min must violate the schema")

	_, err = database.Exec(`INSERT INTO items (id, name, category, updated_at)
		VALUES ('c', 'Mop', 'Garden', 0)`)
	require.Error(t, err, "unknown category must violate the schema")
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "barstock.sqlite3")

	database, err := Open(path)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, Migrate(context.Background(), database))
	require.FileExists(t, path)
}
