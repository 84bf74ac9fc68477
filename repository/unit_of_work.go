package repository

import (
	"context"
	"errors"
	"fmt"

	"dicehall/application"
	"dicehall/database"
	"dicehall/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	guildID                int64
	transactionalPublisher application.TransactionalEventPublisher
	userRepo               interfaces.UserRepository
	balanceHistoryRepo     interfaces.BalanceHistoryRepository
	jackpotRepo            interfaces.JackpotRepository
	topupRepo              interfaces.TopupRepository
	bankTransactionRepo    interfaces.BankTransactionRepository
	ringRepo               interfaces.RingRepository
	inventoryRepo          interfaces.InventoryRepository
	marriageRepo           interfaces.MarriageRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{db: db}
}

// UnitOfWorkFactory opens guild-scoped transactions
type UnitOfWorkFactory struct {
	db *database.DB
}

// CreateForGuildWithPublisher creates a new UnitOfWork with a specific transactional publisher
func (f *UnitOfWorkFactory) CreateForGuildWithPublisher(guildID int64, transactionalPublisher application.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		guildID:                guildID,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.userRepo = NewUserRepositoryScoped(tx, u.guildID)
	u.balanceHistoryRepo = NewBalanceHistoryRepositoryScoped(tx, u.guildID)
	u.jackpotRepo = NewJackpotRepositoryScoped(tx, u.guildID)
	u.topupRepo = NewTopupRepositoryScoped(tx, u.guildID)
	u.bankTransactionRepo = NewBankTransactionRepositoryScoped(tx) // bank feed is global
	u.ringRepo = NewRingRepositoryScoped(tx, u.guildID)
	u.inventoryRepo = NewInventoryRepositoryScoped(tx, u.guildID)
	u.marriageRepo = NewMarriageRepositoryScoped(tx, u.guildID)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.tx = nil

	if u.transactionalPublisher != nil {
		_ = u.transactionalPublisher.Flush(u.ctx)
	}
	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	u.tx = nil

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}
	return nil
}

func (u *unitOfWork) UserRepository() interfaces.UserRepository {
	return started(u.userRepo)
}

func (u *unitOfWork) BalanceHistoryRepository() interfaces.BalanceHistoryRepository {
	return started(u.balanceHistoryRepo)
}

func (u *unitOfWork) JackpotRepository() interfaces.JackpotRepository {
	return started(u.jackpotRepo)
}

func (u *unitOfWork) TopupRepository() interfaces.TopupRepository {
	return started(u.topupRepo)
}

func (u *unitOfWork) BankTransactionRepository() interfaces.BankTransactionRepository {
	return started(u.bankTransactionRepo)
}

func (u *unitOfWork) RingRepository() interfaces.RingRepository {
	return started(u.ringRepo)
}

func (u *unitOfWork) InventoryRepository() interfaces.InventoryRepository {
	return started(u.inventoryRepo)
}

func (u *unitOfWork) MarriageRepository() interfaces.MarriageRepository {
	return started(u.marriageRepo)
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("unit of work has no transactional publisher")
	}
	return u.transactionalPublisher
}

func started[R any](repo R) R {
	if any(repo) == nil {
		panic("unit of work not started - call Begin() first")
	}
	return repo
}
