package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDescriptorStoreContract runs a suite of tests to verify that a DescriptorStore
// implementation adheres to the defined interface contract.
func RunDescriptorStoreContract(t *testing.T, store DescriptorStore) {
	ctx := context.Background()
	id := "contract-test-" + time.Now().Format("20060102150405")
	restore := false

	t.Run("Save and Load", func(t *testing.T) {
		d := domain.Descriptor{
			UniqueID:               id,
			URL:                    "page/contract",
			URLParams:              map[string]any{"foo": "bar", "count": 42},
			EngineID:               domain.DefaultEngineID,
			BackgroundMode:         domain.BackgroundTransparent,
			EnableStateRestoration: &restore,
		}
		require.NoError(t, store.Save(ctx, d), "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, d.URL, loaded.URL)
		assert.Equal(t, d.EngineID, loaded.EngineID)
		assert.Equal(t, domain.BackgroundTransparent, loaded.BackgroundMode)
		assert.Equal(t, "bar", loaded.URLParams["foo"])
		// JSON persistence may turn ints into floats; existence is enough here.
		assert.NotNil(t, loaded.URLParams["count"])
		require.NotNil(t, loaded.EnableStateRestoration)
		assert.False(t, *loaded.EnableStateRestoration)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrDescriptorNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.Descriptor{UniqueID: id, URL: "page/contract"}))
		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrDescriptorNotFound, "Load after Delete should return ErrDescriptorNotFound")

		assert.NoError(t, store.Delete(ctx, id), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		idA := id + "-a"
		idB := id + "-b"
		require.NoError(t, store.Save(ctx, domain.Descriptor{UniqueID: idA, URL: "page/a"}))
		require.NoError(t, store.Save(ctx, domain.Descriptor{UniqueID: idB, URL: "page/b"}))

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, idA)
		assert.Contains(t, ids, idB)

		_ = store.Delete(ctx, idA)
		_ = store.Delete(ctx, idB)
	})
}
