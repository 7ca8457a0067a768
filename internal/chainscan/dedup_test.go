package chainscan

import (
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeenCache_MarkSeen(t *testing.T) {
	t.Run("first sighting is new, second is not", func(t *testing.T) {
		cache := NewSeenCache(10)
		entity := Entity{ID: uuid.Must(uuid.NewV7()), Kind: EntityKindAddress, Address: "addr1"}

		assert.True(t, cache.MarkSeen(entity, "tx-1"))
		assert.False(t, cache.MarkSeen(entity, "tx-1"))
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("same address watched as address and contract do not collide", func(t *testing.T) {
		cache := NewSeenCache(10)
		addr := Entity{ID: uuid.Must(uuid.NewV7()), Kind: EntityKindAddress, Address: "shared"}
		contract := Entity{ID: uuid.Must(uuid.NewV7()), Kind: EntityKindContract, Address: "shared"}

		assert.True(t, cache.MarkSeen(addr, "tx-1"))
		assert.True(t, cache.MarkSeen(contract, "tx-1"))
	})

	t.Run("clears at capacity but retains the in-flight key", func(t *testing.T) {
		cache := NewSeenCache(3)
		entity := Entity{ID: uuid.Must(uuid.NewV7()), Kind: EntityKindAddress, Address: "addr1"}

		for i := 0; i < 3; i++ {
			require.True(t, cache.MarkSeen(entity, fmt.Sprintf("tx-%d", i)))
		}
		require.Equal(t, 3, cache.Len())

		// The insert that would exceed the capacity drops everything else
		// but must keep the key being inserted.
		assert.True(t, cache.MarkSeen(entity, "tx-3"))
		assert.Equal(t, 1, cache.Len())
		assert.False(t, cache.MarkSeen(entity, "tx-3"))

		// Evicted keys read as new again.
		assert.True(t, cache.MarkSeen(entity, "tx-0"))
	})

	t.Run("non-positive capacity falls back to the default", func(t *testing.T) {
		cache := NewSeenCache(0)
		entity := Entity{ID: uuid.Must(uuid.NewV7()), Kind: EntityKindAddress, Address: "addr1"}

		for i := 0; i < defaultSeenCacheCapacity; i++ {
			require.True(t, cache.MarkSeen(entity, fmt.Sprintf("tx-%d", i)))
		}
		assert.Equal(t, defaultSeenCacheCapacity, cache.Len())
	})
}

func TestSeenCache_Forget(t *testing.T) {
	t.Run("forgotten key is new again", func(t *testing.T) {
		cache := NewSeenCache(10)
		entity := Entity{ID: uuid.Must(uuid.NewV7()), Kind: EntityKindAddress, Address: "addr1"}

		require.True(t, cache.MarkSeen(entity, "tx-1"))
		cache.Forget(entity, "tx-1")

		assert.True(t, cache.MarkSeen(entity, "tx-1"))
	})

	t.Run("forgetting an absent key is a no-op", func(t *testing.T) {
		cache := NewSeenCache(10)
		entity := Entity{ID: uuid.Must(uuid.NewV7()), Kind: EntityKindAddress, Address: "addr1"}

		cache.Forget(entity, "never-seen")
		assert.Equal(t, 0, cache.Len())
	})
}
