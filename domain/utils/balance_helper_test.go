package utils

import (
	"context"
	"errors"
	"testing"

	"dicehall/domain/entities"
	"dicehall/domain/events"
	"dicehall/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRecordBalanceChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	historyRepo := new(testhelpers.MockBalanceHistoryRepository)
	publisher := new(testhelpers.MockEventPublisher)

	historyRepo.On("Record", ctx, mock.Anything).Return(nil)
	publisher.On("Publish", mock.MatchedBy(func(event events.Event) bool {
		change, ok := event.(events.BalanceChangeEvent)
		return ok && change.ChangeAmount == 800 && change.TransactionType == entities.TransactionTypeSessionPayout
	})).Return(nil)

	history := entities.NewBalanceHistory(123456, 789, 1000, 1800, entities.TransactionTypeSessionPayout, nil)

	err := RecordBalanceChange(ctx, historyRepo, publisher, history)
	assert.NoError(t, err)

	historyRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestRecordBalanceChangeUserCreatedEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	historyRepo := new(testhelpers.MockBalanceHistoryRepository)
	publisher := new(testhelpers.MockEventPublisher)

	historyRepo.On("Record", ctx, mock.Anything).Return(nil)
	publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return(nil)
	publisher.On("Publish", mock.MatchedBy(func(event events.Event) bool {
		created, ok := event.(events.UserCreatedEvent)
		return ok && created.Username == "TestUser" && created.InitialBalance == 10000
	})).Return(nil)

	history := entities.NewBalanceHistory(123456, 789, 0, 10000, entities.TransactionTypeInitial, map[string]any{
		"username": "TestUser",
	})

	err := RecordBalanceChange(ctx, historyRepo, publisher, history)
	assert.NoError(t, err)

	historyRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestRecordBalanceChangeFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("history write fails", func(t *testing.T) {
		t.Parallel()
		historyRepo := new(testhelpers.MockBalanceHistoryRepository)
		publisher := new(testhelpers.MockEventPublisher)
		historyRepo.On("Record", ctx, mock.Anything).Return(errors.New("db down"))

		err := RecordBalanceChange(ctx, historyRepo, publisher, entities.NewBalanceHistory(1, 2, 10, 20, entities.TransactionTypeAdminAdd, nil))
		assert.ErrorContains(t, err, "failed to record balance history")
		publisher.AssertNotCalled(t, "Publish", mock.Anything)
	})

	t.Run("publish failure is swallowed", func(t *testing.T) {
		t.Parallel()
		historyRepo := new(testhelpers.MockBalanceHistoryRepository)
		publisher := new(testhelpers.MockEventPublisher)
		historyRepo.On("Record", ctx, mock.Anything).Return(nil)
		publisher.On("Publish", mock.Anything).Return(errors.New("nats unavailable"))

		err := RecordBalanceChange(ctx, historyRepo, publisher, entities.NewBalanceHistory(1, 2, 10, 20, entities.TransactionTypeAdminAdd, nil))
		assert.NoError(t, err)
	})
}
