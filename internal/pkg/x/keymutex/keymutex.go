// Package keymutex provides a non-blocking per-key exclusion primitive. It
// is used to guarantee that at most one goroutine works on a given key (a
// watched entity, a delivery id) at a time, while letting late arrivals skip
// instead of queueing behind the holder.
package keymutex

import "sync"

// KeyedMutex tracks which keys are currently held. The zero value is not
// usable; construct with New.
type KeyedMutex struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// New creates an empty KeyedMutex.
func New() *KeyedMutex {
	return &KeyedMutex{
		held: make(map[string]struct{}),
	}
}

// TryLock attempts to acquire the key. On success it returns a release
// function and true; the caller must invoke the release function exactly
// once. When the key is already held it returns (nil, false) immediately.
func (k *KeyedMutex) TryLock(key string) (func(), bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, ok := k.held[key]; ok {
		return nil, false
	}

	k.held[key] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			k.mu.Lock()
			defer k.mu.Unlock()
			delete(k.held, key)
		})
	}

	return release, true
}
