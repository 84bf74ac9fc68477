package entities

import "time"

// Ring is a purchasable shop item
type Ring struct {
	ID        int64     `db:"id"`
	GuildID   int64     `db:"guild_id"`
	Name      string    `db:"name"`
	Emoji     string    `db:"emoji"`
	Price     int64     `db:"price"`
	CreatedAt time.Time `db:"created_at"`
}

// InventoryItem is a ring owned by a user. Ring details are copied at purchase
// time so removing a ring from the shop does not alter owned items.
type InventoryItem struct {
	ID         int64     `db:"id"`
	GuildID    int64     `db:"guild_id"`
	DiscordID  int64     `db:"discord_id"`
	RingName   string    `db:"ring_name"`
	RingEmoji  string    `db:"ring_emoji"`
	RingPrice  int64     `db:"ring_price"`
	AcquiredAt time.Time `db:"acquired_at"`
}
