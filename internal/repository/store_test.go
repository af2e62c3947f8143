package repository

import (
	"context"
	"testing"

	"address-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addressStore is implemented by every backend in this package.
type addressStore interface {
	Migrate(ctx context.Context) error
	FetchAll(ctx context.Context) ([]models.Address, error)
	FetchByID(ctx context.Context, id int64) (*models.Address, error)
	InsertOne(ctx context.Context, addr models.NewAddress) (int64, error)
	InsertMany(ctx context.Context, addrs []models.NewAddress) error
	UpdateByID(ctx context.Context, id int64, patch models.AddressPatch) error
	SoftDeleteByID(ctx context.Context, id int64) error
	HardDeleteAll(ctx context.Context) error
}

// testStoreBehaviour runs the same scenarios against any backend. newStore
// must return an empty, migrated store.
func testStoreBehaviour(t *testing.T, newStore func(t *testing.T) addressStore) {
	t.Run("create then fetch returns the same fields", func(t *testing.T) {
		store := newStore(t)
		ctx := t.Context()

		id, err := store.InsertOne(ctx, models.NewAddress{Name: "Marunouchi", Latitude: 35.681236, Longitude: 139.767125})
		require.NoError(t, err)

		addr, err := store.FetchByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, &models.Address{ID: id, Name: "Marunouchi", Latitude: 35.681236, Longitude: 139.767125}, addr)
	})

	t.Run("fetch unknown id", func(t *testing.T) {
		store := newStore(t)

		addr, err := store.FetchByID(t.Context(), 12345)
		assert.Nil(t, addr)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ids are not reused", func(t *testing.T) {
		store := newStore(t)
		ctx := t.Context()

		first, err := store.InsertOne(ctx, models.NewAddress{Name: "first"})
		require.NoError(t, err)
		require.NoError(t, store.HardDeleteAll(ctx))

		second, err := store.InsertOne(ctx, models.NewAddress{Name: "second"})
		require.NoError(t, err)
		assert.Greater(t, second, first)
	})

	t.Run("partial update changes only set fields", func(t *testing.T) {
		store := newStore(t)
		ctx := t.Context()

		id, err := store.InsertOne(ctx, models.NewAddress{Name: "before", Latitude: 10.125, Longitude: 20.25})
		require.NoError(t, err)

		name := "after"
		require.NoError(t, store.UpdateByID(ctx, id, models.AddressPatch{Name: &name}))

		addr, err := store.FetchByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "after", addr.Name)
		assert.Equal(t, 10.125, addr.Latitude)
		assert.Equal(t, 20.25, addr.Longitude)
		assert.False(t, addr.IsDeleted)

		lng := -3.5
		deleted := true
		require.NoError(t, store.UpdateByID(ctx, id, models.AddressPatch{Longitude: &lng, IsDeleted: &deleted}))

		addr, err = store.FetchByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, &models.Address{ID: id, Name: "after", Latitude: 10.125, Longitude: -3.5, IsDeleted: true}, addr)
	})

	t.Run("update unknown id is a no-op", func(t *testing.T) {
		store := newStore(t)
		name := "ghost"

		require.NoError(t, store.UpdateByID(t.Context(), 999, models.AddressPatch{Name: &name}))
	})

	t.Run("soft delete hides from list but not from fetch", func(t *testing.T) {
		store := newStore(t)
		ctx := t.Context()

		keep, err := store.InsertOne(ctx, models.NewAddress{Name: "keep", Latitude: 1, Longitude: 1})
		require.NoError(t, err)
		drop, err := store.InsertOne(ctx, models.NewAddress{Name: "drop", Latitude: 2, Longitude: 2})
		require.NoError(t, err)

		require.NoError(t, store.SoftDeleteByID(ctx, drop))
		require.NoError(t, store.SoftDeleteByID(ctx, 424242))

		list, err := store.FetchAll(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, keep, list[0].ID)

		addr, err := store.FetchByID(ctx, drop)
		require.NoError(t, err)
		assert.True(t, addr.IsDeleted)
	})

	t.Run("hard delete removes soft deleted rows too", func(t *testing.T) {
		store := newStore(t)
		ctx := t.Context()

		id, err := store.InsertOne(ctx, models.NewAddress{Name: "one"})
		require.NoError(t, err)
		_, err = store.InsertOne(ctx, models.NewAddress{Name: "two"})
		require.NoError(t, err)
		require.NoError(t, store.SoftDeleteByID(ctx, id))

		require.NoError(t, store.HardDeleteAll(ctx))

		list, err := store.FetchAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)

		_, err = store.FetchByID(ctx, id)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("insert many then list", func(t *testing.T) {
		store := newStore(t)
		ctx := t.Context()

		require.NoError(t, store.InsertMany(ctx, []models.NewAddress{
			{Name: "A", Latitude: 1, Longitude: 1},
			{Name: "B", Latitude: 2, Longitude: 2},
		}))

		list, err := store.FetchAll(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "A", list[0].Name)
		assert.Equal(t, 1.0, list[0].Latitude)
		assert.Equal(t, 1.0, list[0].Longitude)
		assert.Equal(t, "B", list[1].Name)
		assert.Equal(t, 2.0, list[1].Latitude)
		assert.Equal(t, 2.0, list[1].Longitude)
	})

	t.Run("migrate is idempotent", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.Migrate(t.Context()))
	})
}
