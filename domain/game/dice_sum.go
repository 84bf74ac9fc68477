package game

import (
	"strings"

	"dicehall/domain/entities"

	"github.com/KirkDiggler/rpg-toolkit/dice"
)

// TaiThreshold is the lowest sum that resolves to TAI
const TaiThreshold = 11

// DiceSum is Tai Xiu: three dice summed, 11 through 18 is TAI and 3 through 10 is XIU
type DiceSum struct{}

func (DiceSum) Kind() entities.GameKind { return entities.GameKindDiceSum }

func (DiceSum) Sides() []entities.Side {
	return []entities.Side{entities.SideTai, entities.SideXiu}
}

func (DiceSum) Chips() []int64 {
	return []int64{100, 500, 1000, 5000, 10000}
}

func (r DiceSum) ParseSide(raw string) (entities.Side, error) {
	side := entities.Side(strings.ToLower(strings.TrimSpace(raw)))
	if !containsSide(r.Sides(), side) {
		return "", ErrInvalidSide
	}
	return side, nil
}

func (DiceSum) DrawOutcome(roller dice.Roller) (entities.Outcome, error) {
	faces, err := rollThree(roller)
	if err != nil {
		return entities.Outcome{}, err
	}
	return DiceSumOutcome(faces), nil
}

// DiceSumOutcome resolves fixed faces, used for restores and tests
func DiceSumOutcome(faces [3]int) entities.Outcome {
	sum := faces[0] + faces[1] + faces[2]
	side := entities.SideXiu
	if sum >= TaiThreshold {
		side = entities.SideTai
	}
	return entities.Outcome{
		Kind:   entities.GameKindDiceSum,
		Dice:   faces,
		Sum:    sum,
		Side:   side,
		Triple: faces[0] == faces[1] && faces[1] == faces[2],
	}
}

func (DiceSum) ResolveSide(outcome entities.Outcome, side entities.Side) int {
	if outcome.Side == side {
		return 1
	}
	return 0
}

// AcceptStake allows more stake on the committed side only
func (DiceSum) AcceptStake(bet *entities.SessionBet, side entities.Side) error {
	if bet == nil {
		return nil
	}
	for committed, amount := range bet.Stakes {
		if committed != side && amount > 0 {
			return ErrSideAlreadyCommitted
		}
	}
	return nil
}

func (DiceSum) ComputePayout(stake int64, matches int) int64 {
	if matches <= 0 || stake <= 0 {
		return 0
	}
	return stake + winnings(stake, 1)
}

func (DiceSum) JackpotEnabled() bool { return true }

func (DiceSum) StickyAmount() bool { return false }
