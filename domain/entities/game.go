package entities

import (
	"fmt"
	"sort"
	"strings"
)

// GameKind identifies a dice game variant
type GameKind string

const (
	GameKindDiceSum    GameKind = "dice_sum"
	GameKindAnimalDice GameKind = "animal_dice"
)

// AllGameKinds lists every playable variant
var AllGameKinds = []GameKind{GameKindDiceSum, GameKindAnimalDice}

// ParseGameKind accepts both the stored form and the command aliases
func ParseGameKind(raw string) (GameKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(GameKindDiceSum), "taixiu", "tai_xiu":
		return GameKindDiceSum, nil
	case string(GameKindAnimalDice), "baucua", "bau_cua":
		return GameKindAnimalDice, nil
	default:
		return "", fmt.Errorf("unknown game kind %q", raw)
	}
}

// DisplayName returns the player-facing name of the variant
func (k GameKind) DisplayName() string {
	switch k {
	case GameKindDiceSum:
		return "Tài Xỉu"
	case GameKindAnimalDice:
		return "Bầu Cua"
	default:
		return string(k)
	}
}

// Side is a bettable outcome bucket
type Side string

const (
	SideTai Side = "tai"
	SideXiu Side = "xiu"

	SideDeer    Side = "nai"
	SideGourd   Side = "bau"
	SideRooster Side = "ga"
	SideShrimp  Side = "tom"
	SideCrab    Side = "cua"
	SideFish    Side = "ca"
)

// Emoji returns the symbol shown on boards and buttons
func (s Side) Emoji() string {
	switch s {
	case SideTai:
		return "🔴"
	case SideXiu:
		return "⚪"
	case SideDeer:
		return "🦌"
	case SideGourd:
		return "🍐"
	case SideRooster:
		return "🐓"
	case SideShrimp:
		return "🦐"
	case SideCrab:
		return "🦀"
	case SideFish:
		return "🐟"
	default:
		return "❔"
	}
}

// Label returns the upper-case name used in result text
func (s Side) Label() string {
	return strings.ToUpper(string(s))
}

// Outcome is one resolved roll of three dice
type Outcome struct {
	Kind GameKind `json:"kind"`
	// Dice holds the raw faces, 1 through 6
	Dice   [3]int  `json:"dice"`
	Faces  [3]Side `json:"faces,omitempty"`
	Sum    int     `json:"sum"`
	Side   Side    `json:"side,omitempty"`
	Triple bool    `json:"triple"`
}

// SessionBet is a user's committed stake for the current round
type SessionBet struct {
	UserID int64          `json:"user_id"`
	Stakes map[Side]int64 `json:"stakes"`
}

// NewSessionBet creates an empty wager record for a user
func NewSessionBet(userID int64) *SessionBet {
	return &SessionBet{UserID: userID, Stakes: make(map[Side]int64)}
}

// Total returns the amount staked across every side
func (b *SessionBet) Total() int64 {
	var total int64
	for _, amount := range b.Stakes {
		total += amount
	}
	return total
}

// Sides returns the staked sides in a stable order
func (b *SessionBet) Sides() []Side {
	sides := make([]Side, 0, len(b.Stakes))
	for side := range b.Stakes {
		sides = append(sides, side)
	}
	sort.Slice(sides, func(i, j int) bool { return sides[i] < sides[j] })
	return sides
}

// Clone returns a deep copy safe to hand outside the owning goroutine
func (b *SessionBet) Clone() *SessionBet {
	clone := NewSessionBet(b.UserID)
	for side, amount := range b.Stakes {
		clone.Stakes[side] = amount
	}
	return clone
}

// PendingSelection is a chosen chip amount that has not been committed
type PendingSelection struct {
	Amount int64 `json:"amount"`
}
