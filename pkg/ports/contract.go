package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/propschema/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCatalogStoreContract runs a suite of tests to verify that a CatalogStore
// implementation adheres to the defined interface contract.
func RunCatalogStoreContract(t *testing.T, store CatalogStore) {
	ctx := context.Background()
	suffix := time.Now().Format("20060102150405")
	key := schema.Key("Microsoft.Contract/tests", "2024-01-01-"+suffix)
	doc := []byte(`{"resourceType":"Microsoft.Contract/tests","version":"2024-01-01"}`)

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, key, doc)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, doc, loaded)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		replacement := []byte(`{"resourceType":"Microsoft.Contract/tests","version":"replaced"}`)
		require.NoError(t, store.Save(ctx, key, replacement))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, replacement, loaded)
	})

	t.Run("Load Isolation", func(t *testing.T) {
		original := []byte("isolated")
		isolated := key + "-isolated"
		require.NoError(t, store.Save(ctx, isolated, original))
		defer func() { _ = store.Delete(ctx, isolated) }()

		original[0] = 'X'
		loaded, err := store.Load(ctx, isolated)
		require.NoError(t, err)
		assert.Equal(t, "isolated", string(loaded), "stored bytes must not alias the caller's slice")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent@"+suffix)
		assert.ErrorIs(t, err, schema.ErrSchemaNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, doc))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, schema.ErrSchemaNotFound, "Load after Delete should return ErrSchemaNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		k1 := schema.Key("Microsoft.Contract/b", suffix)
		k2 := schema.Key("Microsoft.Contract/a", suffix)
		require.NoError(t, store.Save(ctx, k1, doc))
		require.NoError(t, store.Save(ctx, k2, doc))
		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
		assert.IsNonDecreasing(t, keys)
		assert.NotContains(t, keys, key)
	})
}
