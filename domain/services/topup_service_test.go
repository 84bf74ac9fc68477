package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"dicehall/domain/entities"
	"dicehall/domain/events"
	"dicehall/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type topupMocks struct {
	topups    *testhelpers.MockTopupRepository
	bank      *testhelpers.MockBankTransactionRepository
	users     *testhelpers.MockUserRepository
	history   *testhelpers.MockBalanceHistoryRepository
	publisher *testhelpers.MockEventPublisher
	roller    *scriptedRoller
}

var topupNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTopupFixture() (*topupService, topupMocks) {
	m := topupMocks{
		topups:    new(testhelpers.MockTopupRepository),
		bank:      new(testhelpers.MockBankTransactionRepository),
		users:     new(testhelpers.MockUserRepository),
		history:   new(testhelpers.MockBalanceHistoryRepository),
		publisher: new(testhelpers.MockEventPublisher),
		roller:    newScriptedRoller(),
	}
	svc := NewTopupService(m.topups, m.bank, m.users, m.history, m.publisher, m.roller).(*topupService)
	svc.now = func() time.Time { return topupNow }
	return svc, m
}

func pendingTopup(id, owner int64, code string, expiresAt time.Time) *entities.Topup {
	return &entities.Topup{
		ID:        id,
		GuildID:   77,
		DiscordID: owner,
		ChannelID: 900,
		Code:      code,
		Status:    entities.TopupStatusPending,
		ExpiresAt: expiresAt,
	}
}

func TestGenerateTopupCode(t *testing.T) {
	t.Parallel()

	code, err := GenerateTopupCode(newScriptedRoller(1, 2, 26, 1))
	require.NoError(t, err)
	assert.Equal(t, "ABZ1000", code)

	code, err = GenerateTopupCode(newScriptedRoller(17, 11, 4, 9000))
	require.NoError(t, err)
	assert.Equal(t, "QKD9999", code)

	extracted, ok := entities.ExtractTopupCode("chuyen tien " + code)
	assert.True(t, ok)
	assert.Equal(t, code, extracted)
}

func TestTopupService_RequestTopup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("reuses an unexpired pending topup", func(t *testing.T) {
		t.Parallel()
		svc, m := newTopupFixture()
		existing := pendingTopup(5, 1, "AAA1111", topupNow.Add(time.Minute))
		m.topups.On("GetPendingByUser", ctx, int64(1)).Return(existing, nil)

		req, err := svc.RequestTopup(ctx, 1, 900, "alice")
		require.NoError(t, err)
		assert.True(t, req.Reused)
		assert.Same(t, existing, req.Topup)
		m.topups.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("creates a new code when the pending one expired", func(t *testing.T) {
		t.Parallel()
		svc, m := newTopupFixture()
		m.roller.push(3, 1, 2, 4235)
		m.topups.On("GetPendingByUser", ctx, int64(1)).Return(pendingTopup(5, 1, "AAA1111", topupNow), nil)
		m.topups.On("Create", ctx, mock.MatchedBy(func(tp *entities.Topup) bool {
			return tp.Code == "CAB5234" &&
				tp.DiscordID == 1 &&
				tp.ChannelID == 900 &&
				tp.Status == entities.TopupStatusPending &&
				tp.ExpiresAt.Equal(topupNow.Add(TopupTTL))
		})).Return(nil)

		req, err := svc.RequestTopup(ctx, 1, 900, "alice")
		require.NoError(t, err)
		assert.False(t, req.Reused)
		assert.Equal(t, "CAB5234", req.Topup.Code)
		m.topups.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		t.Parallel()
		svc, m := newTopupFixture()
		m.topups.On("GetPendingByUser", ctx, int64(1)).Return(nil, errors.New("timeout"))

		_, err := svc.RequestTopup(ctx, 1, 900, "alice")
		assert.ErrorContains(t, err, "failed to check pending topup: timeout")
	})
}

func TestTopupService_CancelTopup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(m topupMocks)
		wantErr    error
	}{
		{
			name: "owner cancels",
			setupMocks: func(m topupMocks) {
				m.topups.On("GetPendingByCode", ctx, "ABC1234").Return(pendingTopup(9, 1, "ABC1234", topupNow.Add(time.Minute)), nil)
				m.topups.On("MarkExpired", ctx, int64(9)).Return(nil)
			},
		},
		{
			name: "someone else's code",
			setupMocks: func(m topupMocks) {
				m.topups.On("GetPendingByCode", ctx, "ABC1234").Return(pendingTopup(9, 2, "ABC1234", topupNow.Add(time.Minute)), nil)
			},
			wantErr: ErrTopupNotFound,
		},
		{
			name: "unknown code",
			setupMocks: func(m topupMocks) {
				m.topups.On("GetPendingByCode", ctx, "ABC1234").Return(nil, nil)
			},
			wantErr: ErrTopupNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, m := newTopupFixture()
			tt.setupMocks(m)

			err := svc.CancelTopup(ctx, 1, " abc1234 ")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				m.topups.AssertNotCalled(t, "MarkExpired", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			m.topups.AssertExpectations(t)
		})
	}
}

func expectSettlement(ctx context.Context, m topupMocks, topup *entities.Topup, tx *entities.BankTransaction, user *entities.User) {
	m.topups.On("MarkPaid", ctx, topup.ID, tx.TransactionID, tx.Description, tx.Amount, topupNow).Return(nil)
	m.bank.On("MarkClaimed", ctx, tx.TransactionID).Return(nil)
	var before int64
	if user == nil {
		m.users.On("GetByDiscordID", ctx, topup.DiscordID).Return(nil, nil)
		m.users.On("Create", ctx, topup.DiscordID, "", int64(0)).Return(&entities.User{DiscordID: topup.DiscordID}, nil)
	} else {
		before = user.Balance
		m.users.On("GetByDiscordID", ctx, topup.DiscordID).Return(user, nil)
	}
	m.users.On("UpdateBalance", ctx, topup.DiscordID, before+tx.Amount).Return(nil)
	m.history.On("Record", ctx, historyOf(topup.DiscordID, before, before+tx.Amount, entities.TransactionTypeTopup)).Return(nil)
	m.publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)
	m.publisher.On("Publish", mock.MatchedBy(func(e events.TopupPaidEvent) bool {
		return e.TopupID == topup.ID &&
			e.GuildID == topup.GuildID &&
			e.ChannelID == topup.ChannelID &&
			e.Amount == tx.Amount &&
			e.NewBalance == before+tx.Amount
	})).Return(nil)
}

func TestTopupService_Reconcile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("pays the pending topup named in the description", func(t *testing.T) {
		t.Parallel()
		svc, m := newTopupFixture()
		topup := pendingTopup(9, 1, "XYZ4821", topupNow.Add(5*time.Minute))
		tx := &entities.BankTransaction{TransactionID: "FT001", Amount: 50000, Description: "nap tien xyz4821 cam on"}
		m.topups.On("GetPendingByCode", ctx, "XYZ4821").Return(topup, nil)
		expectSettlement(ctx, m, topup, tx, &entities.User{DiscordID: 1, Balance: 1200})

		result, err := svc.Reconcile(ctx, tx)
		require.NoError(t, err)
		assert.Equal(t, int64(51200), result.NewBalance)
		assert.Equal(t, entities.TopupStatusPaid, result.Topup.Status)
		assert.Equal(t, "FT001", *result.Topup.TransactionID)
		m.topups.AssertExpectations(t)
		m.bank.AssertExpectations(t)
		m.users.AssertExpectations(t)
		m.publisher.AssertExpectations(t)
	})

	t.Run("creates the account when the payer never played", func(t *testing.T) {
		t.Parallel()
		svc, m := newTopupFixture()
		topup := pendingTopup(9, 1, "XYZ4821", topupNow.Add(5*time.Minute))
		tx := &entities.BankTransaction{TransactionID: "FT002", Amount: 20000, Description: "XYZ4821"}
		m.topups.On("GetPendingByCode", ctx, "XYZ4821").Return(topup, nil)
		expectSettlement(ctx, m, topup, tx, nil)

		result, err := svc.Reconcile(ctx, tx)
		require.NoError(t, err)
		assert.Equal(t, int64(20000), result.NewBalance)
		m.users.AssertExpectations(t)
	})

	t.Run("expired topup is marked and rejected", func(t *testing.T) {
		t.Parallel()
		svc, m := newTopupFixture()
		m.topups.On("GetPendingByCode", ctx, "XYZ4821").Return(pendingTopup(9, 1, "XYZ4821", topupNow.Add(-time.Second)), nil)
		m.topups.On("MarkExpired", ctx, int64(9)).Return(nil)

		_, err := svc.Reconcile(ctx, &entities.BankTransaction{TransactionID: "FT003", Amount: 10000, Description: "XYZ4821"})
		assert.ErrorIs(t, err, ErrTopupExpired)
		m.bank.AssertNotCalled(t, "MarkClaimed", mock.Anything, mock.Anything)
	})

	t.Run("description without a code", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTopupFixture()
		_, err := svc.Reconcile(ctx, &entities.BankTransaction{TransactionID: "FT004", Amount: 10000, Description: "lunch money"})
		assert.ErrorIs(t, err, ErrTopupNotFound)
	})

	t.Run("no pending topup for the code", func(t *testing.T) {
		t.Parallel()
		svc, m := newTopupFixture()
		m.topups.On("GetPendingByCode", ctx, "QQQ0000").Return(nil, nil)

		_, err := svc.Reconcile(ctx, &entities.BankTransaction{TransactionID: "FT005", Amount: 10000, Description: "QQQ0000"})
		assert.ErrorIs(t, err, ErrTopupNotFound)
	})
}

func TestTopupService_ConfirmTopup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("payment not yet received", func(t *testing.T) {
		t.Parallel()
		svc, m := newTopupFixture()
		m.topups.On("GetPendingByCode", ctx, "XYZ4821").Return(pendingTopup(9, 1, "XYZ4821", topupNow.Add(time.Minute)), nil)
		m.bank.On("GetUnclaimedByCode", ctx, "XYZ4821").Return(nil, nil)

		_, err := svc.ConfirmTopup(ctx, 1, "XYZ4821")
		assert.ErrorIs(t, err, ErrPaymentNotReceived)
	})

	t.Run("settles an unclaimed transfer", func(t *testing.T) {
		t.Parallel()
		svc, m := newTopupFixture()
		topup := pendingTopup(9, 1, "XYZ4821", topupNow.Add(time.Minute))
		tx := &entities.BankTransaction{TransactionID: "FT010", Amount: 10000, Description: "XYZ4821"}
		m.topups.On("GetPendingByCode", ctx, "XYZ4821").Return(topup, nil)
		m.bank.On("GetUnclaimedByCode", ctx, "XYZ4821").Return(tx, nil)
		expectSettlement(ctx, m, topup, tx, &entities.User{DiscordID: 1, Balance: 0})

		result, err := svc.ConfirmTopup(ctx, 1, "xyz4821")
		require.NoError(t, err)
		assert.Equal(t, int64(10000), result.Amount)
		m.bank.AssertExpectations(t)
	})
}

func TestTopupService_RevenueStats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, m := newTopupFixture()
	recent := []*entities.Topup{{ID: 1, Amount: 50000}}
	m.topups.On("GetRevenueTotals", ctx).Return(int64(250000), int64(6), nil)
	m.topups.On("GetRecentPaid", ctx, RecentTopupsShown).Return(recent, nil)
	m.users.On("GetTotalBalance", ctx).Return(int64(180000), nil)

	stats, err := svc.RevenueStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(250000), stats.TotalRevenue)
	assert.Equal(t, int64(6), stats.TotalTransactions)
	assert.Equal(t, int64(70000), stats.Profit())
	assert.Equal(t, recent, stats.Recent)
}
