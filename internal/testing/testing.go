// Package testing provides shared test helpers for tecflow packages.
package testing

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// NewMockDB creates a sqlmock-backed database handle with regexp query
// matching. Automatically registers cleanup via t.Cleanup().
func NewMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	database, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}

	t.Cleanup(func() {
		database.Close()
	})

	return database, mock
}
