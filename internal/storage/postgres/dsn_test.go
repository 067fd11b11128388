package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pmdesk/pm-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "pm",
		Password: "secret",
		Name:     "projects",
	}

	assert.Equal(t, "host=db port=5433 user=pm password=secret dbname=projects sslmode=disable", DSN(cfg))

	cfg.SSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS projects")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureSchema(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}
