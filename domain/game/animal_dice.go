package game

import (
	"strings"

	"dicehall/domain/entities"

	"github.com/KirkDiggler/rpg-toolkit/dice"
)

// animalFaces maps die faces 1 through 6 onto the board symbols
var animalFaces = [6]entities.Side{
	entities.SideDeer,
	entities.SideGourd,
	entities.SideRooster,
	entities.SideShrimp,
	entities.SideCrab,
	entities.SideFish,
}

// AnimalDice is Bau Cua: three six-symbol dice, each matching face pays once
type AnimalDice struct{}

func (AnimalDice) Kind() entities.GameKind { return entities.GameKindAnimalDice }

func (AnimalDice) Sides() []entities.Side {
	sides := make([]entities.Side, len(animalFaces))
	copy(sides, animalFaces[:])
	return sides
}

func (AnimalDice) Chips() []int64 {
	return []int64{100, 500, 1000, 2000, 5000}
}

func (r AnimalDice) ParseSide(raw string) (entities.Side, error) {
	side := entities.Side(strings.ToLower(strings.TrimSpace(raw)))
	if !containsSide(r.Sides(), side) {
		return "", ErrInvalidSide
	}
	return side, nil
}

func (AnimalDice) DrawOutcome(roller dice.Roller) (entities.Outcome, error) {
	faces, err := rollThree(roller)
	if err != nil {
		return entities.Outcome{}, err
	}
	return AnimalDiceOutcome(faces), nil
}

// AnimalDiceOutcome resolves fixed faces
func AnimalDiceOutcome(faces [3]int) entities.Outcome {
	outcome := entities.Outcome{
		Kind:   entities.GameKindAnimalDice,
		Dice:   faces,
		Triple: faces[0] == faces[1] && faces[1] == faces[2],
	}
	for i, face := range faces {
		outcome.Faces[i] = animalFaces[face-1]
	}
	return outcome
}

func (AnimalDice) ResolveSide(outcome entities.Outcome, side entities.Side) int {
	matches := 0
	for _, face := range outcome.Faces {
		if face == side {
			matches++
		}
	}
	return matches
}

// AcceptStake places no restriction, a user may hold every side at once
func (AnimalDice) AcceptStake(*entities.SessionBet, entities.Side) error {
	return nil
}

func (AnimalDice) ComputePayout(stake int64, matches int) int64 {
	if matches <= 0 || stake <= 0 {
		return 0
	}
	return stake + winnings(stake, matches)
}

func (AnimalDice) JackpotEnabled() bool { return false }

func (AnimalDice) StickyAmount() bool { return true }
