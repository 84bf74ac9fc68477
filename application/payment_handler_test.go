package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"dicehall/domain/entities"
	"dicehall/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pendingTopup(expiresAt time.Time) *entities.Topup {
	return &entities.Topup{
		ID:        31,
		GuildID:   testGuildID,
		DiscordID: testUserID,
		ChannelID: 555,
		Code:      "QKD4821",
		Status:    entities.TopupStatusPending,
		ExpiresAt: expiresAt,
	}
}

func TestPaymentHandler_HandleTransaction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		tx         *entities.BankTransaction
		setupMocks func(all, guild *fakeUnitOfWork)
		guildUsed  bool
		wantErr    bool
	}{
		{
			name: "credits matching topup",
			tx:   &entities.BankTransaction{TransactionID: "FT001", Amount: 50000, Description: "chuyen tien qkd4821 nap"},
			setupMocks: func(all, guild *fakeUnitOfWork) {
				all.bank.On("Save", mock.Anything, mock.AnythingOfType("*entities.BankTransaction")).
					Run(func(args mock.Arguments) {
						tx := args.Get(1).(*entities.BankTransaction)
						code := "QKD4821"
						tx.Code = &code
					}).
					Return(true, nil)
				all.topups.On("GetPendingByCode", mock.Anything, "QKD4821").
					Return(pendingTopup(time.Now().Add(10*time.Minute)), nil)

				guild.topups.On("GetPendingByCode", mock.Anything, "QKD4821").
					Return(pendingTopup(time.Now().Add(10*time.Minute)), nil)
				guild.topups.On("MarkPaid", mock.Anything, int64(31), "FT001", "chuyen tien qkd4821 nap", int64(50000), mock.AnythingOfType("time.Time")).
					Return(nil)
				guild.bank.On("MarkClaimed", mock.Anything, "FT001").Return(nil)
				guild.users.On("GetByDiscordID", mock.Anything, testUserID).
					Return(&entities.User{DiscordID: testUserID, Balance: 1000}, nil)
				guild.users.On("UpdateBalance", mock.Anything, testUserID, int64(51000)).Return(nil)
				guild.history.On("Record", mock.Anything, historyWith(entities.TransactionTypeTopup, 1000, 51000)).Return(nil)
				guild.bus.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)
				guild.bus.On("Publish", mock.MatchedBy(func(e events.TopupPaidEvent) bool {
					return e.Amount == 50000 && e.NewBalance == 51000 && e.ChannelID == 555
				})).Return(nil)
			},
			guildUsed: true,
		},
		{
			name: "duplicate transaction is ignored",
			tx:   &entities.BankTransaction{TransactionID: "FT001", Amount: 50000, Description: "QKD4821"},
			setupMocks: func(all, guild *fakeUnitOfWork) {
				all.bank.On("Save", mock.Anything, mock.Anything).Return(false, nil)
				all.bank.On("GetUnclaimedByCode", mock.Anything, "QKD4821").Return(nil, nil)
			},
		},
		{
			name: "redelivered unclaimed transaction is reconciled",
			tx:   &entities.BankTransaction{TransactionID: "FT001", Amount: 50000, Description: "chuyen tien qkd4821 nap"},
			setupMocks: func(all, guild *fakeUnitOfWork) {
				all.bank.On("Save", mock.Anything, mock.Anything).Return(false, nil)
				all.bank.On("GetUnclaimedByCode", mock.Anything, "QKD4821").
					Return(&entities.BankTransaction{TransactionID: "FT001", Amount: 50000}, nil)
				all.topups.On("GetPendingByCode", mock.Anything, "QKD4821").
					Return(pendingTopup(time.Now().Add(10*time.Minute)), nil)

				guild.topups.On("GetPendingByCode", mock.Anything, "QKD4821").
					Return(pendingTopup(time.Now().Add(10*time.Minute)), nil)
				guild.topups.On("MarkPaid", mock.Anything, int64(31), "FT001", "chuyen tien qkd4821 nap", int64(50000), mock.AnythingOfType("time.Time")).
					Return(nil)
				guild.bank.On("MarkClaimed", mock.Anything, "FT001").Return(nil)
				guild.users.On("GetByDiscordID", mock.Anything, testUserID).
					Return(&entities.User{DiscordID: testUserID, Balance: 1000}, nil)
				guild.users.On("UpdateBalance", mock.Anything, testUserID, int64(51000)).Return(nil)
				guild.history.On("Record", mock.Anything, historyWith(entities.TransactionTypeTopup, 1000, 51000)).Return(nil)
				guild.bus.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)
				guild.bus.On("Publish", mock.AnythingOfType("events.TopupPaidEvent")).Return(nil)
			},
			guildUsed: true,
		},
		{
			name: "redelivered transaction claimed by another delivery",
			tx:   &entities.BankTransaction{TransactionID: "FT001", Amount: 50000, Description: "QKD4821"},
			setupMocks: func(all, guild *fakeUnitOfWork) {
				all.bank.On("Save", mock.Anything, mock.Anything).Return(false, nil)
				all.bank.On("GetUnclaimedByCode", mock.Anything, "QKD4821").
					Return(&entities.BankTransaction{TransactionID: "FT009", Amount: 50000}, nil)
			},
		},
		{
			name: "unmatched transaction stays unclaimed",
			tx:   &entities.BankTransaction{TransactionID: "FT002", Amount: 20000, Description: "tien an trua"},
			setupMocks: func(all, guild *fakeUnitOfWork) {
				all.bank.On("Save", mock.Anything, mock.Anything).Return(true, nil)
			},
		},
		{
			name: "code without pending topup",
			tx:   &entities.BankTransaction{TransactionID: "FT003", Amount: 20000, Description: "ABC1234"},
			setupMocks: func(all, guild *fakeUnitOfWork) {
				all.bank.On("Save", mock.Anything, mock.Anything).
					Run(func(args mock.Arguments) {
						code := "ABC1234"
						args.Get(1).(*entities.BankTransaction).Code = &code
					}).
					Return(true, nil)
				all.topups.On("GetPendingByCode", mock.Anything, "ABC1234").Return(nil, nil)
			},
		},
		{
			name: "late transfer expires the topup",
			tx:   &entities.BankTransaction{TransactionID: "FT004", Amount: 50000, Description: "QKD4821"},
			setupMocks: func(all, guild *fakeUnitOfWork) {
				all.bank.On("Save", mock.Anything, mock.Anything).
					Run(func(args mock.Arguments) {
						code := "QKD4821"
						args.Get(1).(*entities.BankTransaction).Code = &code
					}).
					Return(true, nil)
				all.topups.On("GetPendingByCode", mock.Anything, "QKD4821").
					Return(pendingTopup(time.Now().Add(-time.Minute)), nil)
				guild.topups.On("GetPendingByCode", mock.Anything, "QKD4821").
					Return(pendingTopup(time.Now().Add(-time.Minute)), nil)
				guild.topups.On("MarkExpired", mock.Anything, int64(31)).Return(nil)
			},
			guildUsed: true,
		},
		{
			name: "storage failure is returned for redelivery",
			tx:   &entities.BankTransaction{TransactionID: "FT005", Amount: 50000, Description: "QKD4821"},
			setupMocks: func(all, guild *fakeUnitOfWork) {
				all.bank.On("Save", mock.Anything, mock.Anything).Return(false, errors.New("connection reset"))
			},
			wantErr: true,
		},
		{
			name:       "missing transaction ID is dropped",
			tx:         &entities.BankTransaction{Amount: 50000, Description: "QKD4821"},
			setupMocks: func(all, guild *fakeUnitOfWork) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			factory := newFakeUnitOfWorkFactory()
			all := factory.guild(0)
			guild := factory.guild(testGuildID)
			tt.setupMocks(all, guild)

			err := NewPaymentHandler(factory).HandleTransaction(context.Background(), tt.tx)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			if tt.guildUsed {
				_, commits, _ := guild.counts()
				assert.Equal(t, 1, commits)
			} else {
				assert.NotContains(t, factory.created, testGuildID)
			}
			all.assertExpectations(t)
			guild.assertExpectations(t)
		})
	}
}

func TestPaymentHandler_HandleMessage(t *testing.T) {
	t.Parallel()

	t.Run("decodes feed payload", func(t *testing.T) {
		t.Parallel()

		factory := newFakeUnitOfWorkFactory()
		all := factory.guild(0)
		all.bank.On("Save", mock.Anything, mock.MatchedBy(func(tx *entities.BankTransaction) bool {
			return tx.TransactionID == "FT900" && tx.Amount == 100000 && tx.Description == "nap tien"
		})).Return(true, nil)

		payload := []byte(`{"transaction_id":"FT900","amount":100000,"description":"nap tien","received_at":"2026-10-01T08:00:00Z"}`)
		err := NewPaymentHandler(factory).HandleMessage(context.Background(), payload)

		require.NoError(t, err)
		all.assertExpectations(t)
	})

	t.Run("malformed payload is dropped", func(t *testing.T) {
		t.Parallel()

		factory := newFakeUnitOfWorkFactory()
		err := NewPaymentHandler(factory).HandleMessage(context.Background(), []byte(`{"amount":`))

		require.NoError(t, err)
		assert.Empty(t, factory.created)
	})
}
