package testhelpers

import (
	"context"
	"time"

	"dicehall/domain/entities"
	"dicehall/domain/events"
	"dicehall/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*entities.User, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*entities.User, error) {
	args := m.Called(ctx, discordID, username, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdateBalance(ctx context.Context, discordID int64, newBalance int64) error {
	args := m.Called(ctx, discordID, newBalance)
	return args.Error(0)
}

func (m *MockUserRepository) GetLeaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LeaderboardEntry), args.Error(1)
}

func (m *MockUserRepository) GetTotalBalance(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ResetAllBalances(ctx context.Context, balance int64) (int64, error) {
	args := m.Called(ctx, balance)
	return args.Get(0).(int64), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.BalanceHistory, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BalanceHistory), args.Error(1)
}

// MockGameSessionRepository is a mock implementation of GameSessionRepository
type MockGameSessionRepository struct {
	mock.Mock
}

func (m *MockGameSessionRepository) Save(ctx context.Context, snapshot *entities.SessionSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockGameSessionRepository) Delete(ctx context.Context, channelID int64) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *MockGameSessionRepository) FindActiveByGameKind(ctx context.Context, kind entities.GameKind) ([]*entities.SessionSnapshot, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SessionSnapshot), args.Error(1)
}

// MockJackpotRepository is a mock implementation of JackpotRepository
type MockJackpotRepository struct {
	mock.Mock
}

func (m *MockJackpotRepository) Get(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJackpotRepository) Add(ctx context.Context, delta int64) (int64, error) {
	args := m.Called(ctx, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJackpotRepository) Drain(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockTopupRepository is a mock implementation of TopupRepository
type MockTopupRepository struct {
	mock.Mock
}

func (m *MockTopupRepository) Create(ctx context.Context, topup *entities.Topup) error {
	args := m.Called(ctx, topup)
	return args.Error(0)
}

func (m *MockTopupRepository) GetPendingByUser(ctx context.Context, discordID int64) (*entities.Topup, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Topup), args.Error(1)
}

func (m *MockTopupRepository) GetPendingByCode(ctx context.Context, code string) (*entities.Topup, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Topup), args.Error(1)
}

func (m *MockTopupRepository) MarkPaid(ctx context.Context, id int64, transactionID, description string, amount int64, paidAt time.Time) error {
	args := m.Called(ctx, id, transactionID, description, amount, paidAt)
	return args.Error(0)
}

func (m *MockTopupRepository) MarkExpired(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTopupRepository) ExpireOld(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTopupRepository) GetRevenueTotals(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockTopupRepository) GetRecentPaid(ctx context.Context, limit int) ([]*entities.Topup, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Topup), args.Error(1)
}

func (m *MockTopupRepository) DeletePaid(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockBankTransactionRepository is a mock implementation of BankTransactionRepository
type MockBankTransactionRepository struct {
	mock.Mock
}

func (m *MockBankTransactionRepository) Save(ctx context.Context, tx *entities.BankTransaction) (bool, error) {
	args := m.Called(ctx, tx)
	return args.Bool(0), args.Error(1)
}

func (m *MockBankTransactionRepository) GetUnclaimedByCode(ctx context.Context, code string) (*entities.BankTransaction, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BankTransaction), args.Error(1)
}

func (m *MockBankTransactionRepository) MarkClaimed(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

// MockRingRepository is a mock implementation of RingRepository
type MockRingRepository struct {
	mock.Mock
}

func (m *MockRingRepository) List(ctx context.Context) ([]*entities.Ring, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Ring), args.Error(1)
}

func (m *MockRingRepository) GetByName(ctx context.Context, name string) (*entities.Ring, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ring), args.Error(1)
}

func (m *MockRingRepository) Create(ctx context.Context, ring *entities.Ring) error {
	args := m.Called(ctx, ring)
	return args.Error(0)
}

func (m *MockRingRepository) Delete(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// MockInventoryRepository is a mock implementation of InventoryRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) ListByUser(ctx context.Context, discordID int64) ([]*entities.InventoryItem, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) Add(ctx context.Context, item *entities.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockInventoryRepository) Remove(ctx context.Context, itemID int64) (bool, error) {
	args := m.Called(ctx, itemID)
	return args.Bool(0), args.Error(1)
}

// MockMarriageRepository is a mock implementation of MarriageRepository
type MockMarriageRepository struct {
	mock.Mock
}

func (m *MockMarriageRepository) GetByUser(ctx context.Context, discordID int64) (*entities.Marriage, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Marriage), args.Error(1)
}

func (m *MockMarriageRepository) Create(ctx context.Context, marriage *entities.Marriage) error {
	args := m.Called(ctx, marriage)
	return args.Error(0)
}

func (m *MockMarriageRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMarriageRepository) UpdateLovePoints(ctx context.Context, id int64, points int64) error {
	args := m.Called(ctx, id, points)
	return args.Error(0)
}

// MockProposalStore is a mock implementation of ProposalStore
type MockProposalStore struct {
	mock.Mock
}

func (m *MockProposalStore) Save(ctx context.Context, proposal *entities.Proposal, ttl time.Duration) error {
	args := m.Called(ctx, proposal, ttl)
	return args.Error(0)
}

func (m *MockProposalStore) Get(ctx context.Context, guildID, targetID int64) (*entities.Proposal, error) {
	args := m.Called(ctx, guildID, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Proposal), args.Error(1)
}

func (m *MockProposalStore) Take(ctx context.Context, guildID, targetID int64) (*entities.Proposal, error) {
	args := m.Called(ctx, guildID, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Proposal), args.Error(1)
}

// MockCooldownStore is a mock implementation of CooldownStore
type MockCooldownStore struct {
	mock.Mock
}

func (m *MockCooldownStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, time.Duration, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Get(1).(time.Duration), args.Error(2)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockBalanceLedger is a mock implementation of BalanceLedger
type MockBalanceLedger struct {
	mock.Mock
}

func (m *MockBalanceLedger) GetBalance(ctx context.Context, guildID, userID int64) (int64, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceLedger) SetBalance(ctx context.Context, guildID, userID, balance int64, change interfaces.LedgerChange) error {
	args := m.Called(ctx, guildID, userID, balance, change)
	return args.Error(0)
}
