package database

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchemaGivesAuditLogsAnInsertionSequence(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range schema {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, EnsureSchema(context.Background(), sqlx.NewDb(db, "sqlmock")))
	assert.NoError(t, mock.ExpectationsWereMet())

	var create, upgrade bool
	for _, stmt := range schema {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS audit_logs") && strings.Contains(stmt, "seq BIGSERIAL") {
			create = true
		}
		if strings.Contains(stmt, "ADD COLUMN seq BIGSERIAL") {
			upgrade = true
		}
	}
	assert.True(t, create, "new tables get seq")
	assert.True(t, upgrade, "existing tables are upgraded")
}

func TestEnsureSchemaStopsOnFirstFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(schema[0])).WillReturnError(errors.New("permission denied"))
	err = EnsureSchema(context.Background(), sqlx.NewDb(db, "sqlmock"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ensure schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}
