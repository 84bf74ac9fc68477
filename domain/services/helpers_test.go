package services

import (
	"context"
	"fmt"
	"sync"

	"dicehall/domain/interfaces"
)

// scriptedRoller returns queued values in order
type scriptedRoller struct {
	mu     sync.Mutex
	values []int
}

func newScriptedRoller(values ...int) *scriptedRoller {
	return &scriptedRoller{values: values}
}

func (r *scriptedRoller) push(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, values...)
}

func (r *scriptedRoller) Roll(size int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return 0, fmt.Errorf("no scripted roll left for d%d", size)
	}
	v := r.values[0]
	r.values = r.values[1:]
	if v < 1 || v > size {
		return 0, fmt.Errorf("scripted roll %d out of range for d%d", v, size)
	}
	return v, nil
}

func (r *scriptedRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		v, err := r.Roll(size)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

type memLedger struct {
	mu       sync.Mutex
	balances map[int64]int64
}

func newMemLedger(balances map[int64]int64) *memLedger {
	return &memLedger{balances: balances}
}

func (l *memLedger) GetBalance(_ context.Context, _, userID int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID], nil
}

func (l *memLedger) SetBalance(_ context.Context, _, userID, balance int64, _ interfaces.LedgerChange) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[userID] = balance
	return nil
}

func (l *memLedger) balance(userID int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID]
}
