package db

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	tfltest "github.com/teranos/tecflow/internal/testing"
)

func TestMigrateAppliesAllPending(t *testing.T) {
	database, mock := tfltest.NewMockDB(t)

	// Migration 000: schema_migrations does not exist yet
	mock.ExpectQuery("SELECT EXISTS").WithArgs("000").
		WillReturnError(errTableMissing)
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("000").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Migration 001: not yet applied
	mock.ExpectQuery("SELECT EXISTS").WithArgs("001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS tec_data").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := Migrate(database, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateSkipsApplied(t *testing.T) {
	database, mock := tfltest.NewMockDB(t)

	mock.ExpectQuery("SELECT EXISTS").WithArgs("000").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := Migrate(database, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var errTableMissing = errString(`relation "schema_migrations" does not exist`)

type errString string

func (e errString) Error() string { return string(e) }
