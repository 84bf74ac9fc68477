package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestJackpotGateway(t *testing.T) {
	t.Parallel()

	factory := newFakeUnitOfWorkFactory()
	uow := factory.guild(testGuildID)
	uow.jackpots.On("Get", mock.Anything).Return(int64(120), nil).Once()
	uow.jackpots.On("Add", mock.Anything, int64(5)).Return(int64(125), nil).Once()
	uow.jackpots.On("Drain", mock.Anything).Return(int64(125), nil).Once()

	gateway := NewJackpotGateway(factory)
	ctx := context.Background()

	amount, err := gateway.Get(ctx, testGuildID)
	require.NoError(t, err)
	assert.Equal(t, int64(120), amount)

	amount, err = gateway.Add(ctx, testGuildID, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(125), amount)

	amount, err = gateway.Drain(ctx, testGuildID)
	require.NoError(t, err)
	assert.Equal(t, int64(125), amount)

	begins, commits, _ := uow.counts()
	assert.Equal(t, 3, begins)
	assert.Equal(t, 3, commits)
	uow.assertExpectations(t)
}

func TestJackpotGateway_RollsBackOnError(t *testing.T) {
	t.Parallel()

	factory := newFakeUnitOfWorkFactory()
	uow := factory.guild(testGuildID)
	uow.jackpots.On("Add", mock.Anything, int64(5)).Return(int64(0), errors.New("deadlock detected"))

	_, err := NewJackpotGateway(factory).Add(context.Background(), testGuildID, 5)

	require.Error(t, err)
	_, commits, rollbacks := uow.counts()
	assert.Equal(t, 0, commits)
	assert.Equal(t, 1, rollbacks)
}
