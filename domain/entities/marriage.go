package entities

import "time"

// Marriage links two members of a guild
type Marriage struct {
	ID         int64     `db:"id"`
	GuildID    int64     `db:"guild_id"`
	User1ID    int64     `db:"user1_id"`
	User2ID    int64     `db:"user2_id"`
	RingName   string    `db:"ring_name"`
	RingEmoji  string    `db:"ring_emoji"`
	LovePoints int64     `db:"love_points"`
	MarriedAt  time.Time `db:"married_at"`
}

// PartnerOf returns the other spouse, or 0 when the user is not part of the marriage
func (m *Marriage) PartnerOf(userID int64) int64 {
	switch userID {
	case m.User1ID:
		return m.User2ID
	case m.User2ID:
		return m.User1ID
	default:
		return 0
	}
}

// Tier returns the love tier for the current points
func (m *Marriage) Tier() LoveTier {
	return LoveTierFor(m.LovePoints)
}

// LoveTier buckets love points into named levels
type LoveTier string

const (
	LoveTierEternal  LoveTier = "eternal"
	LoveTierBlissful LoveTier = "blissful"
	LoveTierWarm     LoveTier = "warm"
	LoveTierOrdinary LoveTier = "ordinary"
	LoveTierTroubled LoveTier = "troubled"
	LoveTierBreaking LoveTier = "breaking"
)

// LoveTierFor maps points to a tier
func LoveTierFor(points int64) LoveTier {
	switch {
	case points >= 500:
		return LoveTierEternal
	case points >= 300:
		return LoveTierBlissful
	case points >= 150:
		return LoveTierWarm
	case points >= 50:
		return LoveTierOrdinary
	case points > 0:
		return LoveTierTroubled
	default:
		return LoveTierBreaking
	}
}

// Proposal is a pending marriage request awaiting the target's answer
type Proposal struct {
	GuildID    int64     `json:"guild_id"`
	ProposerID int64     `json:"proposer_id"`
	TargetID   int64     `json:"target_id"`
	ItemID     int64     `json:"item_id"`
	RingName   string    `json:"ring_name"`
	RingEmoji  string    `json:"ring_emoji"`
	CreatedAt  time.Time `json:"created_at"`
}
