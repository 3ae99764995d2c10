package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/propschema/pkg/adapters/memory"
	"github.com/aretw0/propschema/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunCatalogStoreContract(t, store)
}

func TestMemoryStore_ConcurrentSave(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Save(ctx, string(rune('a'+i))+"@v1", []byte("{}"))
		}(i)
	}
	wg.Wait()

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 20)
	assert.Equal(t, "a@v1", keys[0])
}
