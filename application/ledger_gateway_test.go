package application

import (
	"context"
	"errors"
	"testing"

	"dicehall/domain/entities"
	"dicehall/domain/game"
	"dicehall/domain/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testGuildID         = int64(4242)
	testUserID          = int64(1001)
	testStartingBalance = int64(10000)
)

func historyWith(txType entities.TransactionType, before, after int64) interface{} {
	return mock.MatchedBy(func(h *entities.BalanceHistory) bool {
		return h.TransactionType == txType &&
			h.BalanceBefore == before &&
			h.BalanceAfter == after &&
			h.IsConsistent()
	})
}

func TestLedgerGateway_GetBalance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		setupMocks func(uow *fakeUnitOfWork)
		expected   int64
	}{
		{
			name: "existing account",
			setupMocks: func(uow *fakeUnitOfWork) {
				uow.users.On("GetByDiscordID", mock.Anything, testUserID).
					Return(&entities.User{DiscordID: testUserID, Balance: 2500}, nil)
			},
			expected: 2500,
		},
		{
			name: "opens account with starting balance",
			setupMocks: func(uow *fakeUnitOfWork) {
				uow.users.On("GetByDiscordID", mock.Anything, testUserID).Return(nil, nil)
				uow.users.On("Create", mock.Anything, testUserID, "", testStartingBalance).
					Return(&entities.User{DiscordID: testUserID, Balance: testStartingBalance}, nil)
				uow.history.On("Record", mock.Anything, historyWith(entities.TransactionTypeInitial, 0, testStartingBalance)).
					Return(nil)
				// balance change plus user created
				uow.bus.On("Publish", mock.Anything).Return(nil).Times(2)
			},
			expected: testStartingBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			factory := newFakeUnitOfWorkFactory()
			uow := factory.guild(testGuildID)
			tt.setupMocks(uow)

			ledger := NewLedgerGateway(factory, testStartingBalance)
			balance, err := ledger.GetBalance(context.Background(), testGuildID, testUserID)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, balance)
			_, commits, _ := uow.counts()
			assert.Equal(t, 1, commits)
			uow.assertExpectations(t)
		})
	}
}

func TestLedgerGateway_UpdateBalance(t *testing.T) {
	t.Parallel()

	change := interfaces.LedgerChange{
		Type:     entities.TransactionTypeSessionBet,
		Metadata: map[string]any{"round": 3},
	}

	tests := []struct {
		name        string
		fn          func(int64) (int64, error)
		setupMocks  func(uow *fakeUnitOfWork)
		expected    int64
		expectedErr error
		wrote       bool
	}{
		{
			name: "debit writes balance and history",
			fn:   func(current int64) (int64, error) { return current - 300, nil },
			setupMocks: func(uow *fakeUnitOfWork) {
				uow.users.On("GetByDiscordID", mock.Anything, testUserID).
					Return(&entities.User{DiscordID: testUserID, Balance: 1000}, nil)
				uow.users.On("UpdateBalance", mock.Anything, testUserID, int64(700)).Return(nil)
				uow.history.On("Record", mock.Anything, historyWith(entities.TransactionTypeSessionBet, 1000, 700)).
					Return(nil)
				uow.bus.On("Publish", mock.Anything).Return(nil).Once()
			},
			expected: 700,
			wrote:    true,
		},
		{
			name: "rejected change leaves balance alone",
			fn: func(current int64) (int64, error) {
				return current, game.ErrInsufficientBalance
			},
			setupMocks: func(uow *fakeUnitOfWork) {
				uow.users.On("GetByDiscordID", mock.Anything, testUserID).
					Return(&entities.User{DiscordID: testUserID, Balance: 50}, nil)
			},
			expected:    50,
			expectedErr: game.ErrInsufficientBalance,
		},
		{
			name: "negative result is refused",
			fn:   func(current int64) (int64, error) { return current - 100, nil },
			setupMocks: func(uow *fakeUnitOfWork) {
				uow.users.On("GetByDiscordID", mock.Anything, testUserID).
					Return(&entities.User{DiscordID: testUserID, Balance: 40}, nil)
			},
			expected: 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			factory := newFakeUnitOfWorkFactory()
			uow := factory.guild(testGuildID)
			tt.setupMocks(uow)

			ledger := NewLedgerGateway(factory, testStartingBalance)
			balance, err := ledger.UpdateBalance(context.Background(), testGuildID, testUserID, change, tt.fn)

			assert.Equal(t, tt.expected, balance)
			switch {
			case tt.wrote:
				require.NoError(t, err)
			case tt.expectedErr != nil:
				assert.True(t, errors.Is(err, tt.expectedErr))
			default:
				assert.Error(t, err)
			}
			if !tt.wrote {
				uow.users.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything)
			}
			uow.assertExpectations(t)
		})
	}
}

func TestLedgerGateway_SetBalance(t *testing.T) {
	t.Parallel()

	factory := newFakeUnitOfWorkFactory()
	uow := factory.guild(testGuildID)
	uow.users.On("GetByDiscordID", mock.Anything, testUserID).
		Return(&entities.User{DiscordID: testUserID, Balance: 1000}, nil)
	uow.users.On("UpdateBalance", mock.Anything, testUserID, int64(1800)).Return(nil)
	uow.history.On("Record", mock.Anything, historyWith(entities.TransactionTypeSessionPayout, 1000, 1800)).Return(nil)
	uow.bus.On("Publish", mock.Anything).Return(nil)

	ledger := NewLedgerGateway(factory, testStartingBalance)
	err := ledger.SetBalance(context.Background(), testGuildID, testUserID, 1800, interfaces.LedgerChange{
		Type: entities.TransactionTypeSessionPayout,
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{testGuildID}, factory.created)
	uow.assertExpectations(t)
}

func TestLedgerGateway_BeginFailure(t *testing.T) {
	t.Parallel()

	factory := newFakeUnitOfWorkFactory()
	factory.guild(testGuildID).beginErr = errors.New("connection refused")

	ledger := NewLedgerGateway(factory, testStartingBalance)
	_, err := ledger.GetBalance(context.Background(), testGuildID, testUserID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
