package keymutex

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_TryLock(t *testing.T) {
	t.Run("second acquisition of a held key fails", func(t *testing.T) {
		km := New()

		release, ok := km.TryLock("a")
		require.True(t, ok)
		defer release()

		_, ok = km.TryLock("a")
		assert.False(t, ok)
	})

	t.Run("distinct keys are independent", func(t *testing.T) {
		km := New()

		releaseA, ok := km.TryLock("a")
		require.True(t, ok)
		defer releaseA()

		releaseB, ok := km.TryLock("b")
		require.True(t, ok)
		defer releaseB()
	})

	t.Run("released key can be acquired again", func(t *testing.T) {
		km := New()

		release, ok := km.TryLock("a")
		require.True(t, ok)
		release()

		release, ok = km.TryLock("a")
		require.True(t, ok)
		release()
	})

	t.Run("double release does not free a later holder", func(t *testing.T) {
		km := New()

		first, ok := km.TryLock("a")
		require.True(t, ok)
		first()

		second, ok := km.TryLock("a")
		require.True(t, ok)
		defer second()

		// Releasing the stale handle again must not unlock the key for
		// the current holder.
		first()
		_, ok = km.TryLock("a")
		assert.False(t, ok)
	})

	t.Run("only one of many concurrent attempts wins", func(t *testing.T) {
		km := New()

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, ok := km.TryLock("a"); ok {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, wins)
	})
}
