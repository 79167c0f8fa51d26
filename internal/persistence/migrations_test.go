package persistence

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrationsAreEmbeddedInOrder(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "0001_init.sql", names[0])

	content, err := migrationFiles.ReadFile("migrations/" + names[0])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content), "CREATE TABLE IF NOT EXISTS tickets"))
}

func TestRunMigrationsWithoutPoolIsNoop(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, zap.NewNop()))
}

func TestDisabledWrappersReportNotConfigured(t *testing.T) {
	ctx := context.Background()
	var pg *Postgres
	assert.False(t, pg.Enabled())
	assert.Error(t, pg.Ping(ctx))

	r := &Redis{}
	assert.False(t, r.Enabled())
	assert.Error(t, r.Ping(ctx))
	r.Close()
}
