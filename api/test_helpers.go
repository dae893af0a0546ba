package api

import (
	"testing"

	"github.com/segmentio/ksuid"

	"orderdesk/srv/sqlite"
)

// NewTestController creates a controller backed by an isolated in-memory
// SQLite database, safe for parallel tests.
func NewTestController(t *testing.T) Controller {
	t.Helper()
	dbName := "api_test_" + ksuid.New().String()
	return Controller{service: sqlite.NewTestStorage(t, dbName)}
}
