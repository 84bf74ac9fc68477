package interfaces

import (
	"context"
	"time"

	"dicehall/domain/entities"
)

// LedgerChange describes why a balance is being overwritten
type LedgerChange struct {
	Type     entities.TransactionType
	Metadata map[string]any
}

// BalanceLedger is the integer currency ledger every game debit and credit goes through
type BalanceLedger interface {
	GetBalance(ctx context.Context, guildID, userID int64) (int64, error)
	SetBalance(ctx context.Context, guildID, userID, balance int64, change LedgerChange) error
}

// BalanceUpdater is implemented by ledgers that can read, check and write a
// balance inside one transaction. fn receives the current balance and returns
// the new one, or an error to abort without writing.
type BalanceUpdater interface {
	UpdateBalance(ctx context.Context, guildID, userID int64, change LedgerChange, fn func(current int64) (int64, error)) (int64, error)
}

// TransferResult holds both sides of a completed transfer
type TransferResult struct {
	FromBalance int64
	ToBalance   int64
	Amount      int64
}

// BalanceAdjustment reports an admin edit
type BalanceAdjustment struct {
	DiscordID     int64
	BalanceBefore int64
	BalanceAfter  int64
}

// EconomyService owns account creation, transfers and admin edits
type EconomyService interface {
	GetOrCreateUser(ctx context.Context, discordID int64, username string) (*entities.User, error)
	Transfer(ctx context.Context, fromID, toID, amount int64, fromName, toName string) (*TransferResult, error)
	Leaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error)
	AddMoney(ctx context.Context, discordID int64, username string, amount int64) (*BalanceAdjustment, error)
	SetMoney(ctx context.Context, discordID int64, username string, amount int64) (*BalanceAdjustment, error)
	ResetMoney(ctx context.Context, discordID int64, username string) (*BalanceAdjustment, error)
	ResetAll(ctx context.Context) (int64, error)
}

// TopupRequest is the outcome of asking for a topup code
type TopupRequest struct {
	Topup  *entities.Topup
	Reused bool
}

// TopupResult is a paid topup with the credited balance
type TopupResult struct {
	Topup      *entities.Topup
	Amount     int64
	NewBalance int64
}

// TopupService runs the bank transfer topup flow
type TopupService interface {
	RequestTopup(ctx context.Context, discordID, channelID int64, username string) (*TopupRequest, error)
	CancelTopup(ctx context.Context, discordID int64, code string) error
	ConfirmTopup(ctx context.Context, discordID int64, code string) (*TopupResult, error)
	Reconcile(ctx context.Context, tx *entities.BankTransaction) (*TopupResult, error)
	ExpireOld(ctx context.Context, now time.Time) (int64, error)
	RevenueStats(ctx context.Context) (*entities.RevenueStats, error)
	ResetRevenue(ctx context.Context) (int64, error)
}

// PurchaseResult is a bought ring with the remaining balance
type PurchaseResult struct {
	Item       *entities.InventoryItem
	NewBalance int64
}

// ShopService sells rings and lists inventories
type ShopService interface {
	ListRings(ctx context.Context) ([]*entities.Ring, error)
	AddRing(ctx context.Context, name, emoji string, price int64) (*entities.Ring, error)
	RemoveRing(ctx context.Context, name string) error
	BuyRing(ctx context.Context, discordID int64, username, ringName string) (*PurchaseResult, error)
	Inventory(ctx context.Context, discordID int64) ([]*entities.InventoryItem, error)
}

// AffinityResult reports a love or hate action
type AffinityResult struct {
	Marriage *entities.Marriage
	Delta    int64
}

// MarriageService runs proposals, marriages and affinity
type MarriageService interface {
	Propose(ctx context.Context, proposerID, targetID int64, ringIndex int) (*entities.Proposal, error)
	Respond(ctx context.Context, targetID int64, accept bool) (*entities.Marriage, *entities.Proposal, error)
	Divorce(ctx context.Context, discordID int64) (*entities.Marriage, error)
	Status(ctx context.Context, discordID int64) (*entities.Marriage, error)
	Love(ctx context.Context, discordID int64) (*AffinityResult, error)
	Hate(ctx context.Context, discordID int64) (*AffinityResult, error)
}
