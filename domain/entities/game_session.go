package entities

import "time"

// SessionSnapshot is the persisted shape of a channel's recurring game
type SessionSnapshot struct {
	ChannelID  int64                      `db:"channel_id"`
	GuildID    int64                      `db:"guild_id"`
	Kind       GameKind                   `db:"game_kind"`
	Round      int                        `db:"round"`
	Bets       map[int64]*SessionBet      `db:"bets"`
	Pending    map[int64]PendingSelection `db:"pending"`
	MessageRef string                     `db:"message_ref"`
	Active     bool                       `db:"is_active"`
	UpdatedAt  time.Time                  `db:"updated_at"`
}

// Jackpot is a guild's accumulated DiceSum bonus pool
type Jackpot struct {
	GuildID   int64     `db:"guild_id" json:"guild_id"`
	Amount    int64     `db:"amount" json:"amount"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
