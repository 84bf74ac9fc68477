package utils

import "sync"

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

// KeyedLock serialises work per key. Entries are dropped once nobody holds or waits on them.
type KeyedLock[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*keyedEntry
}

// NewKeyedLock creates an empty lock table
func NewKeyedLock[K comparable]() *KeyedLock[K] {
	return &KeyedLock[K]{entries: make(map[K]*keyedEntry)}
}

// Lock blocks until the key is free
func (l *KeyedLock[K]) Lock(key K) {
	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &keyedEntry{}
		l.entries[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the key. Unlocking a key that is not held panics like sync.Mutex.
func (l *KeyedLock[K]) Unlock(key K) {
	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		l.mu.Unlock()
		panic("utils: unlock of unlocked key")
	}
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, key)
	}
	l.mu.Unlock()

	entry.mu.Unlock()
}

// WithLock runs fn while holding the key
func (l *KeyedLock[K]) WithLock(key K, fn func() error) error {
	l.Lock(key)
	defer l.Unlock(key)
	return fn()
}

// Len reports how many keys are currently held or awaited
func (l *KeyedLock[K]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
