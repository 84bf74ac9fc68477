// Package game holds the dice variants and the payout math shared by group
// sessions and solo games.
package game

import (
	"fmt"

	"dicehall/domain/entities"

	"github.com/KirkDiggler/rpg-toolkit/dice"
)

const (
	// DefaultStake is used when a side is picked before any chip
	DefaultStake int64 = 1000

	dieFaces = 6
	diceRoll = 3
)

// Rules parameterises the round engine and the payout engine per variant
type Rules interface {
	Kind() entities.GameKind
	Sides() []entities.Side
	Chips() []int64
	ParseSide(raw string) (entities.Side, error)
	DrawOutcome(roller dice.Roller) (entities.Outcome, error)
	// ResolveSide returns how many times the side won, zero for a loss
	ResolveSide(outcome entities.Outcome, side entities.Side) int
	// AcceptStake rejects stakes that would break the variant's side rules
	AcceptStake(bet *entities.SessionBet, side entities.Side) error
	// ComputePayout returns the amount credited for a stake, stake included
	ComputePayout(stake int64, matches int) int64
	JackpotEnabled() bool
	// StickyAmount keeps the chosen chip selected after a commit
	StickyAmount() bool
}

// ForKind returns the rules for a variant
func ForKind(kind entities.GameKind) (Rules, error) {
	switch kind {
	case entities.GameKindDiceSum:
		return DiceSum{}, nil
	case entities.GameKindAnimalDice:
		return AnimalDice{}, nil
	default:
		return nil, fmt.Errorf("no rules for game kind %q", kind)
	}
}

// winnings is floor(stake * matches * 0.8) in integer arithmetic
func winnings(stake int64, matches int) int64 {
	return stake * int64(matches) * 8 / 10
}

func rollThree(roller dice.Roller) ([3]int, error) {
	rolls, err := roller.RollN(diceRoll, dieFaces)
	if err != nil {
		return [3]int{}, fmt.Errorf("failed to roll dice: %w", err)
	}
	if len(rolls) != diceRoll {
		return [3]int{}, fmt.Errorf("expected %d dice, got %d", diceRoll, len(rolls))
	}

	var faces [3]int
	for i, roll := range rolls {
		if roll < 1 || roll > dieFaces {
			return [3]int{}, fmt.Errorf("die face %d out of range", roll)
		}
		faces[i] = roll
	}
	return faces, nil
}

func containsSide(sides []entities.Side, side entities.Side) bool {
	for _, s := range sides {
		if s == side {
			return true
		}
	}
	return false
}
