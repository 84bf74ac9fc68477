package entities

// TransactionType represents the type of balance change
type TransactionType string

const (
	// Group session transactions
	TransactionTypeSessionBet    TransactionType = "session_bet"
	TransactionTypeSessionPayout TransactionType = "session_payout"
	TransactionTypeJackpotPayout TransactionType = "jackpot_payout"

	// Solo game transactions
	TransactionTypeSoloBet    TransactionType = "solo_bet"
	TransactionTypeSoloPayout TransactionType = "solo_payout"
	TransactionTypeSoloRefund TransactionType = "solo_refund"

	// Transfer transactions
	TransactionTypeTransferIn  TransactionType = "transfer_in"
	TransactionTypeTransferOut TransactionType = "transfer_out"

	// Purchases
	TransactionTypeRingPurchase TransactionType = "ring_purchase"

	// System transactions
	TransactionTypeInitial    TransactionType = "initial"
	TransactionTypeTopup      TransactionType = "topup"
	TransactionTypeAdminAdd   TransactionType = "admin_add"
	TransactionTypeAdminSet   TransactionType = "admin_set"
	TransactionTypeAdminReset TransactionType = "admin_reset"
)

// IsWagerType returns true for stakes debited by a game
func (tt TransactionType) IsWagerType() bool {
	return tt == TransactionTypeSessionBet || tt == TransactionTypeSoloBet
}

// IsPayoutType returns true for credits paid by a game
func (tt TransactionType) IsPayoutType() bool {
	return tt == TransactionTypeSessionPayout ||
		tt == TransactionTypeJackpotPayout ||
		tt == TransactionTypeSoloPayout
}

// IsTransferType returns true if the transaction type represents a transfer
func (tt TransactionType) IsTransferType() bool {
	return tt == TransactionTypeTransferIn || tt == TransactionTypeTransferOut
}

// IsAdminType returns true for manual balance edits
func (tt TransactionType) IsAdminType() bool {
	return tt == TransactionTypeAdminAdd || tt == TransactionTypeAdminSet || tt == TransactionTypeAdminReset
}

func (tt TransactionType) String() string {
	return string(tt)
}
