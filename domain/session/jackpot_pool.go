package session

import (
	"context"
	"fmt"
	"sync"

	"dicehall/domain/utils"
)

// JackpotPool serialises jackpot changes per guild and caches the balance
type JackpotPool struct {
	store JackpotStore
	locks *utils.KeyedLock[int64]

	mu    sync.RWMutex
	cache map[int64]int64
}

// NewJackpotPool wraps a durable store
func NewJackpotPool(store JackpotStore) *JackpotPool {
	return &JackpotPool{
		store: store,
		locks: utils.NewKeyedLock[int64](),
		cache: make(map[int64]int64),
	}
}

// Balance returns the guild's pool, loading it once from the store
func (p *JackpotPool) Balance(ctx context.Context, guildID int64) (int64, error) {
	p.mu.RLock()
	amount, ok := p.cache[guildID]
	p.mu.RUnlock()
	if ok {
		return amount, nil
	}

	p.locks.Lock(guildID)
	defer p.locks.Unlock(guildID)

	amount, err := p.store.Get(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to load jackpot for guild %d: %w", guildID, err)
	}
	p.remember(guildID, amount)
	return amount, nil
}

// Contribute adds delta to the guild's pool and returns the new balance
func (p *JackpotPool) Contribute(ctx context.Context, guildID, delta int64) (int64, error) {
	if delta <= 0 {
		return p.Balance(ctx, guildID)
	}

	p.locks.Lock(guildID)
	defer p.locks.Unlock(guildID)

	amount, err := p.store.Add(ctx, guildID, delta)
	if err != nil {
		return 0, fmt.Errorf("failed to add %d to jackpot for guild %d: %w", delta, guildID, err)
	}
	p.remember(guildID, amount)
	return amount, nil
}

// Drain empties the guild's pool and returns what it held
func (p *JackpotPool) Drain(ctx context.Context, guildID int64) (int64, error) {
	p.locks.Lock(guildID)
	defer p.locks.Unlock(guildID)

	amount, err := p.store.Drain(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to drain jackpot for guild %d: %w", guildID, err)
	}
	p.remember(guildID, 0)
	return amount, nil
}

func (p *JackpotPool) remember(guildID, amount int64) {
	p.mu.Lock()
	p.cache[guildID] = amount
	p.mu.Unlock()
}
