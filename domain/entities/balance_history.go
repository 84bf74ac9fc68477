package entities

import "time"

// RelatedType names the entity a balance history row points at
type RelatedType string

const (
	RelatedTypeSession RelatedType = "game_session"
	RelatedTypeTopup   RelatedType = "topup"
	RelatedTypeRing    RelatedType = "ring"
)

// BalanceHistory represents a historical balance change
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	DiscordID           int64           `db:"discord_id"`
	GuildID             int64           `db:"guild_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	RelatedID           *int64          `db:"related_id"`
	RelatedType         *RelatedType    `db:"related_type"`
	CreatedAt           time.Time       `db:"created_at"`
}

// NewBalanceHistory builds a history row from before/after balances
func NewBalanceHistory(discordID, guildID, before, after int64, txType TransactionType, metadata map[string]any) *BalanceHistory {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &BalanceHistory{
		DiscordID:           discordID,
		GuildID:             guildID,
		BalanceBefore:       before,
		BalanceAfter:        after,
		ChangeAmount:        after - before,
		TransactionType:     txType,
		TransactionMetadata: metadata,
		CreatedAt:           time.Now(),
	}
}

// IsConsistent reports whether the change amount matches the before/after pair
func (bh *BalanceHistory) IsConsistent() bool {
	return bh.BalanceBefore+bh.ChangeAmount == bh.BalanceAfter
}
