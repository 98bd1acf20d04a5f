package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLock_SerializesSameKey(t *testing.T) {
	kl := New()
	const workers = 50

	counter := 0
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			kl.Lock("a@b.com")
			counter++ // data race here unless the lock serializes
			kl.Unlock("a@b.com")
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestKeyLock_IndependentKeys(t *testing.T) {
	kl := New()
	kl.Lock("a")
	// Must not block: a different key has its own lock.
	kl.Lock("b")
	kl.Unlock("b")
	kl.Unlock("a")
}

func TestKeyLock_EntriesAreReclaimed(t *testing.T) {
	kl := New()
	kl.Lock("x")
	kl.Unlock("x")
	assert.Empty(t, kl.locks)
}
