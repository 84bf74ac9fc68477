package application

import (
	"context"

	"dicehall/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes buffered events
	Commit() error

	// Rollback rolls back the transaction and drops buffered events
	Rollback() error

	// Repository getters
	UserRepository() interfaces.UserRepository
	BalanceHistoryRepository() interfaces.BalanceHistoryRepository
	JackpotRepository() interfaces.JackpotRepository
	TopupRepository() interfaces.TopupRepository
	BankTransactionRepository() interfaces.BankTransactionRepository
	RingRepository() interfaces.RingRepository
	InventoryRepository() interfaces.InventoryRepository
	MarriageRepository() interfaces.MarriageRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// CreateForGuild creates a UnitOfWork scoped to a guild. Guild 0 spans every guild
	// for the repositories that support it.
	CreateForGuild(guildID int64) UnitOfWork
}

// TransactionalEventPublisher buffers events until the surrounding transaction commits
type TransactionalEventPublisher interface {
	interfaces.EventPublisher
	Flush(ctx context.Context) error
	Discard()
}
