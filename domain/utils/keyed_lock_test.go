package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

type userKey struct {
	guildID int64
	userID  int64
}

func TestKeyedLockSerialisesReadModifyWrite(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.Int64Range(1000, 100000).Draw(t, "initial")
		ops := rapid.SliceOfN(rapid.Int64Range(-500, 500), 2, 20).Draw(t, "ops")

		lock := NewKeyedLock[userKey]()
		key := userKey{guildID: 1, userID: rapid.Int64Range(1, 1_000_000).Draw(t, "userID")}

		expected := initial
		for _, op := range ops {
			expected += op
		}

		balance := initial
		var wg sync.WaitGroup
		for _, op := range ops {
			wg.Add(1)
			go func(amount int64) {
				defer wg.Done()
				_ = lock.WithLock(key, func() error {
					balance += amount
					return nil
				})
			}(op)
		}
		wg.Wait()

		if balance != expected {
			t.Fatalf("expected %d, got %d", expected, balance)
		}
		if lock.Len() != 0 {
			t.Fatalf("expected lock table to be empty, has %d entries", lock.Len())
		}
	})
}

func TestKeyedLockIndependentKeys(t *testing.T) {
	t.Parallel()

	lock := NewKeyedLock[int64]()
	lock.Lock(1)
	// a different key must not block
	done := make(chan struct{})
	go func() {
		lock.Lock(2)
		lock.Unlock(2)
		close(done)
	}()
	<-done
	lock.Unlock(1)
	assert.Equal(t, 0, lock.Len())
}

func TestKeyedLockUnlockWithoutLockPanics(t *testing.T) {
	t.Parallel()

	lock := NewKeyedLock[string]()
	assert.Panics(t, func() { lock.Unlock("nobody") })
}
