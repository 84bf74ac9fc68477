package interfaces

import (
	"context"
	"time"

	"dicehall/domain/entities"
	"dicehall/domain/events"
)

// UserRepository defines guild-scoped account access
type UserRepository interface {
	// GetByDiscordID retrieves a user by their Discord ID, nil when absent
	GetByDiscordID(ctx context.Context, discordID int64) (*entities.User, error)

	// Create creates a new user with the initial balance
	Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*entities.User, error)

	// UpdateBalance overwrites a user's balance
	UpdateBalance(ctx context.Context, discordID int64, newBalance int64) error

	// GetLeaderboard returns the richest accounts, highest first
	GetLeaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error)

	// GetTotalBalance sums every account balance in the guild
	GetTotalBalance(ctx context.Context) (int64, error)

	// ResetAllBalances sets every account in the guild to the given balance
	ResetAllBalances(ctx context.Context, balance int64) (int64, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *entities.BalanceHistory) error

	// GetByUser returns the most recent entries for a user
	GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.BalanceHistory, error)
}

// GameSessionRepository persists recurring channel sessions. It is not guild scoped.
type GameSessionRepository interface {
	Save(ctx context.Context, snapshot *entities.SessionSnapshot) error
	Delete(ctx context.Context, channelID int64) error
	FindActiveByGameKind(ctx context.Context, kind entities.GameKind) ([]*entities.SessionSnapshot, error)
}

// JackpotRepository stores the guild's DiceSum jackpot pool
type JackpotRepository interface {
	// Get returns the current pool, zero when none was ever funded
	Get(ctx context.Context) (int64, error)

	// Add increments the pool and returns the new amount
	Add(ctx context.Context, delta int64) (int64, error)

	// Drain resets the pool to zero and returns what it held
	Drain(ctx context.Context) (int64, error)
}

// TopupRepository stores bank transfer requests. Guild 0 scopes queries to every guild.
type TopupRepository interface {
	Create(ctx context.Context, topup *entities.Topup) error
	GetPendingByUser(ctx context.Context, discordID int64) (*entities.Topup, error)
	GetPendingByCode(ctx context.Context, code string) (*entities.Topup, error)
	MarkPaid(ctx context.Context, id int64, transactionID, description string, amount int64, paidAt time.Time) error
	MarkExpired(ctx context.Context, id int64) error
	ExpireOld(ctx context.Context, now time.Time) (int64, error)
	GetRevenueTotals(ctx context.Context) (total int64, count int64, err error)
	GetRecentPaid(ctx context.Context, limit int) ([]*entities.Topup, error)
	DeletePaid(ctx context.Context) (int64, error)
}

// BankTransactionRepository keeps every transaction reported by the bank feed
type BankTransactionRepository interface {
	// Save stores a transaction and reports false when it was already known
	Save(ctx context.Context, tx *entities.BankTransaction) (bool, error)
	GetUnclaimedByCode(ctx context.Context, code string) (*entities.BankTransaction, error)
	MarkClaimed(ctx context.Context, transactionID string) error
}

// RingRepository manages the guild's ring shop
type RingRepository interface {
	List(ctx context.Context) ([]*entities.Ring, error)
	GetByName(ctx context.Context, name string) (*entities.Ring, error)
	Create(ctx context.Context, ring *entities.Ring) error
	Delete(ctx context.Context, name string) (bool, error)
}

// InventoryRepository manages items owned by users
type InventoryRepository interface {
	ListByUser(ctx context.Context, discordID int64) ([]*entities.InventoryItem, error)
	Add(ctx context.Context, item *entities.InventoryItem) error
	Remove(ctx context.Context, itemID int64) (bool, error)
}

// MarriageRepository manages marriages within a guild
type MarriageRepository interface {
	GetByUser(ctx context.Context, discordID int64) (*entities.Marriage, error)
	Create(ctx context.Context, marriage *entities.Marriage) error
	Delete(ctx context.Context, id int64) error
	UpdateLovePoints(ctx context.Context, id int64, points int64) error
}

// ProposalStore holds pending marriage proposals with a short expiry
type ProposalStore interface {
	Save(ctx context.Context, proposal *entities.Proposal, ttl time.Duration) error
	Get(ctx context.Context, guildID, targetID int64) (*entities.Proposal, error)
	// Take returns and removes the proposal atomically
	Take(ctx context.Context, guildID, targetID int64) (*entities.Proposal, error)
}

// CooldownStore rate-limits repeated actions by key
type CooldownStore interface {
	// Acquire starts the cooldown and returns true, or returns false with the time left
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, time.Duration, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}
