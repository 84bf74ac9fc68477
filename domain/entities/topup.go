package entities

import (
	"regexp"
	"strings"
	"time"
)

// TopupStatus is the lifecycle state of a bank transfer request
type TopupStatus string

const (
	TopupStatusPending TopupStatus = "pending"
	TopupStatusPaid    TopupStatus = "paid"
	TopupStatusExpired TopupStatus = "expired"
)

var topupCodePattern = regexp.MustCompile(`(?i)[A-Z]{3}\d{4}`)

// ExtractTopupCode finds the first topup code in a transfer description
func ExtractTopupCode(description string) (string, bool) {
	match := topupCodePattern.FindString(description)
	if match == "" {
		return "", false
	}
	return strings.ToUpper(match), true
}

// Topup is a user's request to buy balance by bank transfer
type Topup struct {
	ID            int64       `db:"id"`
	GuildID       int64       `db:"guild_id"`
	DiscordID     int64       `db:"discord_id"`
	ChannelID     int64       `db:"channel_id"`
	Code          string      `db:"code"`
	Amount        int64       `db:"amount"`
	Status        TopupStatus `db:"status"`
	TransactionID *string     `db:"transaction_id"`
	Description   string      `db:"description"`
	ExpiresAt     time.Time   `db:"expires_at"`
	CreatedAt     time.Time   `db:"created_at"`
	PaidAt        *time.Time  `db:"paid_at"`
}

// IsExpiredAt reports whether the request can no longer be paid
func (t *Topup) IsExpiredAt(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// BankTransaction is one incoming transfer reported by the bank feed
type BankTransaction struct {
	TransactionID string    `json:"transaction_id" db:"transaction_id"`
	Amount        int64     `json:"amount" db:"amount"`
	Description   string    `json:"description" db:"description"`
	Code          *string   `json:"-" db:"code"`
	Claimed       bool      `json:"-" db:"claimed"`
	ReceivedAt    time.Time `json:"received_at" db:"received_at"`
}

// RevenueStats summarises paid topups for a guild
type RevenueStats struct {
	TotalRevenue      int64
	TotalTransactions int64
	TotalUserBalance  int64
	Recent            []*Topup
}

// Profit is revenue not yet held as user balances
func (r *RevenueStats) Profit() int64 {
	return r.TotalRevenue - r.TotalUserBalance
}
