package application

import (
	"context"
	"fmt"

	"dicehall/domain/entities"
	"dicehall/domain/interfaces"
	"dicehall/domain/utils"

	log "github.com/sirupsen/logrus"
)

// LedgerGateway is the BalanceLedger used by sessions and solo games. Every
// write runs in its own guild-scoped unit of work and leaves a history row.
type LedgerGateway struct {
	uowFactory      UnitOfWorkFactory
	startingBalance int64
}

// NewLedgerGateway creates a ledger over the unit of work factory
func NewLedgerGateway(uowFactory UnitOfWorkFactory, startingBalance int64) *LedgerGateway {
	return &LedgerGateway{
		uowFactory:      uowFactory,
		startingBalance: startingBalance,
	}
}

var (
	_ interfaces.BalanceLedger  = (*LedgerGateway)(nil)
	_ interfaces.BalanceUpdater = (*LedgerGateway)(nil)
)

// GetBalance returns the user's balance, opening an account on first use
func (g *LedgerGateway) GetBalance(ctx context.Context, guildID, userID int64) (int64, error) {
	uow := g.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := g.account(ctx, uow, guildID, userID)
	if err != nil {
		return 0, err
	}
	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user.Balance, nil
}

// SetBalance overwrites the balance and records the change
func (g *LedgerGateway) SetBalance(ctx context.Context, guildID, userID, balance int64, change interfaces.LedgerChange) error {
	_, err := g.UpdateBalance(ctx, guildID, userID, change, func(int64) (int64, error) {
		return balance, nil
	})
	return err
}

// UpdateBalance reads, checks and writes one balance inside a single transaction.
// When fn fails nothing is written and the current balance is returned with the error.
func (g *LedgerGateway) UpdateBalance(ctx context.Context, guildID, userID int64, change interfaces.LedgerChange, fn func(current int64) (int64, error)) (int64, error) {
	uow := g.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := g.account(ctx, uow, guildID, userID)
	if err != nil {
		return 0, err
	}

	next, err := fn(user.Balance)
	if err != nil {
		// Commit so a freshly opened account survives the rejected change
		if commitErr := uow.Commit(); commitErr != nil {
			log.WithError(commitErr).Warn("Failed to commit account creation")
		}
		return user.Balance, err
	}
	if next < 0 {
		return user.Balance, fmt.Errorf("balance for user %d would become negative (%d)", userID, next)
	}

	if err := uow.UserRepository().UpdateBalance(ctx, userID, next); err != nil {
		return user.Balance, fmt.Errorf("failed to update balance: %w", err)
	}

	history := entities.NewBalanceHistory(userID, guildID, user.Balance, next, change.Type, change.Metadata)
	if err := utils.RecordBalanceChange(ctx, uow.BalanceHistoryRepository(), uow.EventBus(), history); err != nil {
		return user.Balance, err
	}

	if err := uow.Commit(); err != nil {
		return user.Balance, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"guildID": guildID,
		"amount":  next - user.Balance,
		"type":    change.Type,
	}).Debug("Balance updated")
	return next, nil
}

func (g *LedgerGateway) account(ctx context.Context, uow UnitOfWork, guildID, userID int64) (*entities.User, error) {
	user, err := uow.UserRepository().GetByDiscordID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	if user != nil {
		return user, nil
	}

	user, err = uow.UserRepository().Create(ctx, userID, "", g.startingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create user %d: %w", userID, err)
	}
	history := entities.NewBalanceHistory(userID, guildID, 0, g.startingBalance, entities.TransactionTypeInitial, map[string]any{})
	if err := utils.RecordBalanceChange(ctx, uow.BalanceHistoryRepository(), uow.EventBus(), history); err != nil {
		return nil, err
	}
	return user, nil
}
