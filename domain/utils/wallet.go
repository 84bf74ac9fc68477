package utils

import (
	"context"
	"fmt"

	"dicehall/domain/game"
	"dicehall/domain/interfaces"
)

// AccountKey identifies one guild account
type AccountKey struct {
	GuildID int64
	UserID  int64
}

// Wallet performs read-modify-write balance changes on a BalanceLedger.
// Sessions and solo games share one Wallet so a user betting in two places
// at once is serialised. Ledgers that also implement BalanceUpdater get the
// whole change in a single transaction.
type Wallet struct {
	ledger interfaces.BalanceLedger
	locks  *KeyedLock[AccountKey]
}

// NewWallet wraps a ledger
func NewWallet(ledger interfaces.BalanceLedger) *Wallet {
	return &Wallet{ledger: ledger, locks: NewKeyedLock[AccountKey]()}
}

// Balance reads the current balance
func (w *Wallet) Balance(ctx context.Context, guildID, userID int64) (int64, error) {
	return w.ledger.GetBalance(ctx, guildID, userID)
}

// Debit removes amount from the account, failing with game.ErrInsufficientBalance
// when the balance does not cover it. It returns the new balance.
func (w *Wallet) Debit(ctx context.Context, guildID, userID, amount int64, change interfaces.LedgerChange) (int64, error) {
	if amount <= 0 {
		return 0, game.ErrInvalidAmount
	}
	balance, err := w.apply(ctx, guildID, userID, change, func(current int64) (int64, error) {
		if current < amount {
			return current, game.ErrInsufficientBalance
		}
		return current - amount, nil
	})
	if err != nil {
		return balance, fmt.Errorf("failed to debit user %d in guild %d: %w", userID, guildID, err)
	}
	return balance, nil
}

// Credit adds amount to the account and returns the new balance
func (w *Wallet) Credit(ctx context.Context, guildID, userID, amount int64, change interfaces.LedgerChange) (int64, error) {
	if amount <= 0 {
		return 0, game.ErrInvalidAmount
	}
	balance, err := w.apply(ctx, guildID, userID, change, func(current int64) (int64, error) {
		return current + amount, nil
	})
	if err != nil {
		return balance, fmt.Errorf("failed to credit user %d in guild %d: %w", userID, guildID, err)
	}
	return balance, nil
}

func (w *Wallet) apply(ctx context.Context, guildID, userID int64, change interfaces.LedgerChange, fn func(int64) (int64, error)) (int64, error) {
	key := AccountKey{GuildID: guildID, UserID: userID}
	w.locks.Lock(key)
	defer w.locks.Unlock(key)

	if updater, ok := w.ledger.(interfaces.BalanceUpdater); ok {
		return updater.UpdateBalance(ctx, guildID, userID, change, fn)
	}

	current, err := w.ledger.GetBalance(ctx, guildID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	next, err := fn(current)
	if err != nil {
		return current, err
	}
	if err := w.ledger.SetBalance(ctx, guildID, userID, next, change); err != nil {
		return current, err
	}
	return next, nil
}
