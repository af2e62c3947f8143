//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func setupTestDatabase(t *testing.T) string {
	ctx := context.Background()

	postgresC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, postgresC)
	require.NoError(t, err)

	connString, err := postgresC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	return connString
}

func TestPostgresRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	connString := setupTestDatabase(t)

	pool, err := NewDatabase(t.Context(), connString)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := NewRepository(pool)
	require.NoError(t, repo.Migrate(t.Context()))

	testStoreBehaviour(t, func(t *testing.T) addressStore {
		require.NoError(t, repo.HardDeleteAll(t.Context()))
		return repo
	})
}
