package repository

import (
	"context"
	"testing"
	"time"

	"dicehall/domain/entities"
	"dicehall/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopupRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	guild := NewTopupRepositoryScoped(testDB.DB.Pool, 1)
	otherGuild := NewTopupRepositoryScoped(testDB.DB.Pool, 2)
	everyGuild := NewTopupRepositoryScoped(testDB.DB.Pool, 0)

	live := testutil.CreateTestTopup(100, "ABC1234", 15*time.Minute)
	stale := testutil.CreateTestTopup(101, "DEF5678", -time.Minute)
	require.NoError(t, guild.Create(ctx, live))
	require.NoError(t, otherGuild.Create(ctx, stale))
	assert.NotZero(t, live.ID)
	assert.Equal(t, int64(1), live.GuildID)

	t.Run("guild zero cannot create", func(t *testing.T) {
		assert.Error(t, everyGuild.Create(ctx, testutil.CreateTestTopup(1, "ZZZ0000", time.Minute)))
	})

	t.Run("lookups respect the guild scope", func(t *testing.T) {
		found, err := guild.GetPendingByCode(ctx, "DEF5678")
		require.NoError(t, err)
		assert.Nil(t, found)

		found, err = everyGuild.GetPendingByCode(ctx, "DEF5678")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, int64(2), found.GuildID)

		byUser, err := guild.GetPendingByUser(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, byUser)
		assert.Equal(t, "ABC1234", byUser.Code)
		assert.Equal(t, entities.TopupStatusPending, byUser.Status)
		assert.Nil(t, byUser.TransactionID)
	})

	t.Run("expire old only touches stale rows", func(t *testing.T) {
		count, err := everyGuild.ExpireOld(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		found, err := everyGuild.GetPendingByCode(ctx, "DEF5678")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("mark paid once", func(t *testing.T) {
		paidAt := time.Now().UTC().Truncate(time.Microsecond)
		require.NoError(t, guild.MarkPaid(ctx, live.ID, "FT100", "ABC1234 thanks", 50000, paidAt))
		assert.Error(t, guild.MarkPaid(ctx, live.ID, "FT101", "again", 50000, paidAt))

		total, count, err := guild.GetRevenueTotals(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(50000), total)
		assert.Equal(t, int64(1), count)

		recent, err := guild.GetRecentPaid(ctx, 5)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, "FT100", *recent[0].TransactionID)
		assert.True(t, paidAt.Equal(*recent[0].PaidAt))

		deleted, err := guild.DeletePaid(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})
}

func TestBankTransactionRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewBankTransactionRepositoryScoped(testDB.DB.Pool)

	tx := &entities.BankTransaction{TransactionID: "FT1", Amount: 20000, Description: "nap tien abc1234"}
	saved, err := repo.Save(ctx, tx)
	require.NoError(t, err)
	assert.True(t, saved)
	require.NotNil(t, tx.Code)
	assert.Equal(t, "ABC1234", *tx.Code)

	saved, err = repo.Save(ctx, &entities.BankTransaction{TransactionID: "FT1", Amount: 20000})
	require.NoError(t, err)
	assert.False(t, saved)

	found, err := repo.GetUnclaimedByCode(ctx, "ABC1234")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(20000), found.Amount)

	require.NoError(t, repo.MarkClaimed(ctx, "FT1"))
	assert.Error(t, repo.MarkClaimed(ctx, "FT1"))

	found, err = repo.GetUnclaimedByCode(ctx, "ABC1234")
	require.NoError(t, err)
	assert.Nil(t, found)
}
