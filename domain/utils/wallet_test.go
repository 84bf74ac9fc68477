package utils

import (
	"context"
	"errors"
	"testing"

	"dicehall/domain/entities"
	"dicehall/domain/game"
	"dicehall/domain/interfaces"
	"dicehall/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWalletDebit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	change := interfaces.LedgerChange{Type: entities.TransactionTypeSessionBet}

	tests := []struct {
		name        string
		amount      int64
		setupMocks  func(ledger *testhelpers.MockBalanceLedger)
		wantBalance int64
		wantErr     error
		errContains string
	}{
		{
			name:   "debits when covered",
			amount: 1000,
			setupMocks: func(ledger *testhelpers.MockBalanceLedger) {
				ledger.On("GetBalance", ctx, int64(1), int64(2)).Return(int64(5000), nil)
				ledger.On("SetBalance", ctx, int64(1), int64(2), int64(4000), change).Return(nil)
			},
			wantBalance: 4000,
		},
		{
			name:   "exact balance",
			amount: 5000,
			setupMocks: func(ledger *testhelpers.MockBalanceLedger) {
				ledger.On("GetBalance", ctx, int64(1), int64(2)).Return(int64(5000), nil)
				ledger.On("SetBalance", ctx, int64(1), int64(2), int64(0), change).Return(nil)
			},
			wantBalance: 0,
		},
		{
			name:   "insufficient balance",
			amount: 5001,
			setupMocks: func(ledger *testhelpers.MockBalanceLedger) {
				ledger.On("GetBalance", ctx, int64(1), int64(2)).Return(int64(5000), nil)
			},
			wantBalance: 5000,
			wantErr:     game.ErrInsufficientBalance,
		},
		{
			name:        "non positive amount",
			amount:      0,
			setupMocks:  func(ledger *testhelpers.MockBalanceLedger) {},
			wantErr:     game.ErrInvalidAmount,
			wantBalance: 0,
		},
		{
			name:   "ledger read fails",
			amount: 100,
			setupMocks: func(ledger *testhelpers.MockBalanceLedger) {
				ledger.On("GetBalance", ctx, int64(1), int64(2)).Return(int64(0), errors.New("db down"))
			},
			errContains: "failed to read balance: db down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ledger := new(testhelpers.MockBalanceLedger)
			tt.setupMocks(ledger)

			balance, err := NewWallet(ledger).Debit(ctx, 1, 2, tt.amount, change)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				ledger.AssertNotCalled(t, "SetBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			case tt.errContains != "":
				assert.ErrorContains(t, err, tt.errContains)
			default:
				require.NoError(t, err)
			}
			if tt.errContains == "" {
				assert.Equal(t, tt.wantBalance, balance)
			}
			ledger.AssertExpectations(t)
		})
	}
}

func TestWalletCredit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	change := interfaces.LedgerChange{Type: entities.TransactionTypeSessionPayout}

	ledger := new(testhelpers.MockBalanceLedger)
	ledger.On("GetBalance", ctx, int64(1), int64(2)).Return(int64(200), nil)
	ledger.On("SetBalance", ctx, int64(1), int64(2), int64(2000), change).Return(nil)

	balance, err := NewWallet(ledger).Credit(ctx, 1, 2, 1800, change)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), balance)
	ledger.AssertExpectations(t)
}

type updaterLedger struct {
	testhelpers.MockBalanceLedger
	balance int64
	calls   int
}

func (l *updaterLedger) UpdateBalance(_ context.Context, _, _ int64, _ interfaces.LedgerChange, fn func(int64) (int64, error)) (int64, error) {
	l.calls++
	next, err := fn(l.balance)
	if err != nil {
		return l.balance, err
	}
	l.balance = next
	return next, nil
}

func TestWalletPrefersAtomicUpdater(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ledger := &updaterLedger{balance: 1500}
	wallet := NewWallet(ledger)

	balance, err := wallet.Debit(ctx, 1, 2, 1000, interfaces.LedgerChange{Type: entities.TransactionTypeSoloBet})
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)

	_, err = wallet.Debit(ctx, 1, 2, 1000, interfaces.LedgerChange{Type: entities.TransactionTypeSoloBet})
	assert.ErrorIs(t, err, game.ErrInsufficientBalance)
	assert.Equal(t, int64(500), ledger.balance)
	assert.Equal(t, 2, ledger.calls)

	// the embedded mock would fail the test if Get/Set were used
	ledger.AssertNotCalled(t, "GetBalance", mock.Anything, mock.Anything, mock.Anything)
}
