package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pmstandards/internal/store"
	"pmstandards/internal/store/sqlite"
	"pmstandards/internal/store/storetest"
	"pmstandards/pkg/database"
)

func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db))
	return sqlite.New(db)
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return setupTestStore(t)
	})
}

func TestStore_MigrateIsRepeatable(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, database.Migrate(s.DB.DB))
}
