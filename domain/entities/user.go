package entities

import "time"

// User is a Discord member's account within one guild
type User struct {
	DiscordID int64     `db:"discord_id"`
	Username  string    `db:"username"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CanAfford reports whether the balance covers the amount
func (u *User) CanAfford(amount int64) bool {
	return amount >= 0 && u.Balance >= amount
}

// LeaderboardEntry is one row of the guild balance ranking
type LeaderboardEntry struct {
	Rank      int
	DiscordID int64
	Username  string
	Balance   int64
}
