package events

import "dicehall/domain/entities"

// EventType identifies a domain event
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeUserCreated    EventType = "user_created"
	EventTypeSessionStarted EventType = "session_started"
	EventTypeSessionStopped EventType = "session_stopped"
	EventTypeRoundResolved  EventType = "round_resolved"
	EventTypeTopupPaid      EventType = "topup_paid"
	EventTypeMarriage       EventType = "marriage"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64                    `json:"user_id"`
	GuildID         int64                    `json:"guild_id"`
	OldBalance      int64                    `json:"old_balance"`
	NewBalance      int64                    `json:"new_balance"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	ChangeAmount    int64                    `json:"change_amount"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent is emitted when a member receives their starting balance
type UserCreatedEvent struct {
	UserID         int64  `json:"user_id"`
	GuildID        int64  `json:"guild_id"`
	Username       string `json:"username"`
	InitialBalance int64  `json:"initial_balance"`
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// SessionStartedEvent is emitted when a channel session starts or is restored
type SessionStartedEvent struct {
	ChannelID int64             `json:"channel_id"`
	GuildID   int64             `json:"guild_id"`
	Kind      entities.GameKind `json:"kind"`
	Round     int               `json:"round"`
	Restored  bool              `json:"restored"`
}

func (e SessionStartedEvent) Type() EventType {
	return EventTypeSessionStarted
}

// SessionStoppedEvent is emitted when a channel session is stopped
type SessionStoppedEvent struct {
	ChannelID int64             `json:"channel_id"`
	GuildID   int64             `json:"guild_id"`
	Kind      entities.GameKind `json:"kind"`
	Round     int               `json:"round"`
}

func (e SessionStoppedEvent) Type() EventType {
	return EventTypeSessionStopped
}

// RoundResolvedEvent summarises one settled round
type RoundResolvedEvent struct {
	ChannelID   int64            `json:"channel_id"`
	GuildID     int64            `json:"guild_id"`
	Round       int              `json:"round"`
	Outcome     entities.Outcome `json:"outcome"`
	Players     int              `json:"players"`
	Winners     int              `json:"winners"`
	TotalStaked int64            `json:"total_staked"`
	TotalPaid   int64            `json:"total_paid"`
	JackpotPaid int64            `json:"jackpot_paid"`
}

func (e RoundResolvedEvent) Type() EventType {
	return EventTypeRoundResolved
}

// TopupPaidEvent is emitted after a bank transfer credits a user
type TopupPaidEvent struct {
	TopupID       int64  `json:"topup_id"`
	GuildID       int64  `json:"guild_id"`
	UserID        int64  `json:"user_id"`
	ChannelID     int64  `json:"channel_id"`
	Code          string `json:"code"`
	Amount        int64  `json:"amount"`
	NewBalance    int64  `json:"new_balance"`
	TransactionID string `json:"transaction_id"`
}

func (e TopupPaidEvent) Type() EventType {
	return EventTypeTopupPaid
}

// MarriageEvent is emitted when a marriage is created or dissolved
type MarriageEvent struct {
	GuildID  int64  `json:"guild_id"`
	User1ID  int64  `json:"user1_id"`
	User2ID  int64  `json:"user2_id"`
	Action   string `json:"action"`
	RingName string `json:"ring_name,omitempty"`
}

func (e MarriageEvent) Type() EventType {
	return EventTypeMarriage
}
