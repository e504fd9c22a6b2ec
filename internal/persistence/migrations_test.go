package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrationNamesOrdered(t *testing.T) {
	names, err := MigrationNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init.sql"}, names)
}

func TestRunMigrationsAppliesEveryFile(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS tickets").WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, RunMigrations(context.Background(), mock, zap.NewNop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsStopsOnFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS tickets").WillReturnError(errors.New("permission denied"))

	err = RunMigrations(context.Background(), mock, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0001_init.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, zap.NewNop()))
}
