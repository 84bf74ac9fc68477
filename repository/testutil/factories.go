package testutil

import (
	"time"

	"dicehall/domain/entities"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(discordID int64, username string) *entities.User {
	now := time.Now()
	return &entities.User{
		DiscordID: discordID,
		Username:  username,
		Balance:   100000,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestTopup creates a pending topup expiring after ttl
func CreateTestTopup(discordID int64, code string, ttl time.Duration) *entities.Topup {
	return &entities.Topup{
		DiscordID: discordID,
		ChannelID: 555,
		Code:      code,
		Status:    entities.TopupStatusPending,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// CreateTestSnapshot creates a session snapshot with one committed bet
func CreateTestSnapshot(channelID, guildID int64, kind entities.GameKind, round int) *entities.SessionSnapshot {
	bet := entities.NewSessionBet(42)
	bet.Stakes[entities.SideTai] = 1000
	return &entities.SessionSnapshot{
		ChannelID:  channelID,
		GuildID:    guildID,
		Kind:       kind,
		Round:      round,
		Bets:       map[int64]*entities.SessionBet{42: bet},
		Pending:    map[int64]entities.PendingSelection{43: {Amount: 500}},
		MessageRef: "1234567890",
	}
}
