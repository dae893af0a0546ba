package sqlite

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func NewTestStorage(t *testing.T, dbName string) *Storage {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	err = Migrate(db, dbName)
	require.NoError(t, err)

	return NewStorage(db)
}
