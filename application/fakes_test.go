package application

import (
	"context"
	"sync"
	"testing"

	"dicehall/domain/interfaces"
	"dicehall/domain/testhelpers"
)

// fakeUnitOfWork hands out mock repositories and counts transaction calls
type fakeUnitOfWork struct {
	guildID int64

	users     *testhelpers.MockUserRepository
	history   *testhelpers.MockBalanceHistoryRepository
	jackpots  *testhelpers.MockJackpotRepository
	topups    *testhelpers.MockTopupRepository
	bank      *testhelpers.MockBankTransactionRepository
	rings     *testhelpers.MockRingRepository
	inventory *testhelpers.MockInventoryRepository
	marriages *testhelpers.MockMarriageRepository
	bus       *testhelpers.MockEventPublisher

	beginErr  error
	commitErr error

	mu        sync.Mutex
	begins    int
	commits   int
	rollbacks int
	open      bool
}

func newFakeUnitOfWork(guildID int64) *fakeUnitOfWork {
	return &fakeUnitOfWork{
		guildID:   guildID,
		users:     new(testhelpers.MockUserRepository),
		history:   new(testhelpers.MockBalanceHistoryRepository),
		jackpots:  new(testhelpers.MockJackpotRepository),
		topups:    new(testhelpers.MockTopupRepository),
		bank:      new(testhelpers.MockBankTransactionRepository),
		rings:     new(testhelpers.MockRingRepository),
		inventory: new(testhelpers.MockInventoryRepository),
		marriages: new(testhelpers.MockMarriageRepository),
		bus:       new(testhelpers.MockEventPublisher),
	}
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.beginErr != nil {
		return u.beginErr
	}
	u.begins++
	u.open = true
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.commitErr != nil {
		return u.commitErr
	}
	u.commits++
	u.open = false
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.open {
		u.rollbacks++
		u.open = false
	}
	return nil
}

func (u *fakeUnitOfWork) counts() (begins, commits, rollbacks int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.begins, u.commits, u.rollbacks
}

func (u *fakeUnitOfWork) UserRepository() interfaces.UserRepository { return u.users }
func (u *fakeUnitOfWork) BalanceHistoryRepository() interfaces.BalanceHistoryRepository {
	return u.history
}
func (u *fakeUnitOfWork) JackpotRepository() interfaces.JackpotRepository { return u.jackpots }
func (u *fakeUnitOfWork) TopupRepository() interfaces.TopupRepository     { return u.topups }
func (u *fakeUnitOfWork) BankTransactionRepository() interfaces.BankTransactionRepository {
	return u.bank
}
func (u *fakeUnitOfWork) RingRepository() interfaces.RingRepository           { return u.rings }
func (u *fakeUnitOfWork) InventoryRepository() interfaces.InventoryRepository { return u.inventory }
func (u *fakeUnitOfWork) MarriageRepository() interfaces.MarriageRepository   { return u.marriages }
func (u *fakeUnitOfWork) EventBus() interfaces.EventPublisher                 { return u.bus }

func (u *fakeUnitOfWork) assertExpectations(t *testing.T) {
	u.users.AssertExpectations(t)
	u.history.AssertExpectations(t)
	u.jackpots.AssertExpectations(t)
	u.topups.AssertExpectations(t)
	u.bank.AssertExpectations(t)
	u.bus.AssertExpectations(t)
}

// fakeUnitOfWorkFactory returns one fake per guild so tests can set expectations up front
type fakeUnitOfWorkFactory struct {
	mu      sync.Mutex
	uows    map[int64]*fakeUnitOfWork
	created []int64
}

func newFakeUnitOfWorkFactory() *fakeUnitOfWorkFactory {
	return &fakeUnitOfWorkFactory{uows: make(map[int64]*fakeUnitOfWork)}
}

func (f *fakeUnitOfWorkFactory) guild(guildID int64) *fakeUnitOfWork {
	f.mu.Lock()
	defer f.mu.Unlock()
	uow, ok := f.uows[guildID]
	if !ok {
		uow = newFakeUnitOfWork(guildID)
		f.uows[guildID] = uow
	}
	return uow
}

func (f *fakeUnitOfWorkFactory) CreateForGuild(guildID int64) UnitOfWork {
	uow := f.guild(guildID)
	f.mu.Lock()
	f.created = append(f.created, guildID)
	f.mu.Unlock()
	return uow
}
