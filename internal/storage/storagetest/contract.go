// Package storagetest содержит общие проверки для реализаций storage.Store.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zanvi/lacasabarber/internal/storage"
)

// RunStoreContract проверяет поведение, на которое опирается репозиторий
func RunStoreContract(t *testing.T, store storage.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		value, found, err := store.Get(ctx, "contract_missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, value)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, storage.KeyServices, `[{"id":"1"}]`))

		value, found, err := store.Get(ctx, storage.KeyServices)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `[{"id":"1"}]`, value)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, storage.KeyUsers, `[]`))
		require.NoError(t, store.Set(ctx, storage.KeyUsers, `[{"id":"11999998888"}]`))

		value, found, err := store.Get(ctx, storage.KeyUsers)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `[{"id":"11999998888"}]`, value)
	})

	t.Run("empty value is stored", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, storage.KeyAppointments, ""))

		value, found, err := store.Get(ctx, storage.KeyAppointments)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, value)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}
