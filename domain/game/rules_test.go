package game

import (
	"errors"
	"testing"

	"dicehall/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRoller struct {
	faces []int
	err   error
}

func (r *fixedRoller) Roll(size int) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	return r.faces[0], nil
}

func (r *fixedRoller) RollN(count, size int) ([]int, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.faces[:count], nil
}

func TestDiceSumOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		faces      [3]int
		wantSum    int
		wantSide   entities.Side
		wantTriple bool
	}{
		{name: "lowest sum", faces: [3]int{1, 1, 1}, wantSum: 3, wantSide: entities.SideXiu, wantTriple: true},
		{name: "ten is xiu", faces: [3]int{4, 3, 3}, wantSum: 10, wantSide: entities.SideXiu},
		{name: "eleven is tai", faces: [3]int{5, 3, 3}, wantSum: 11, wantSide: entities.SideTai},
		{name: "fourteen", faces: [3]int{6, 5, 3}, wantSum: 14, wantSide: entities.SideTai},
		{name: "highest sum", faces: [3]int{6, 6, 6}, wantSum: 18, wantSide: entities.SideTai, wantTriple: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			outcome := DiceSumOutcome(tt.faces)
			assert.Equal(t, tt.wantSum, outcome.Sum)
			assert.Equal(t, tt.wantSide, outcome.Side)
			assert.Equal(t, tt.wantTriple, outcome.Triple)
		})
	}
}

func TestAnimalDiceResolveSide(t *testing.T) {
	t.Parallel()

	rules := AnimalDice{}
	// 5 is cua, 3 is ga
	outcome, err := rules.DrawOutcome(&fixedRoller{faces: []int{5, 5, 3}})
	require.NoError(t, err)

	assert.Equal(t, [3]entities.Side{entities.SideCrab, entities.SideCrab, entities.SideRooster}, outcome.Faces)
	assert.Equal(t, 2, rules.ResolveSide(outcome, entities.SideCrab))
	assert.Equal(t, 1, rules.ResolveSide(outcome, entities.SideRooster))
	assert.Equal(t, 0, rules.ResolveSide(outcome, entities.SideFish))
	assert.False(t, outcome.Triple)
}

func TestDrawOutcomeRejectsBadRolls(t *testing.T) {
	t.Parallel()

	_, err := DiceSum{}.DrawOutcome(&fixedRoller{err: errors.New("entropy exhausted")})
	assert.ErrorContains(t, err, "failed to roll dice")

	_, err = AnimalDice{}.DrawOutcome(&fixedRoller{faces: []int{7, 1, 1}})
	assert.ErrorContains(t, err, "out of range")
}

func TestParseSide(t *testing.T) {
	t.Parallel()

	side, err := DiceSum{}.ParseSide(" TAI ")
	require.NoError(t, err)
	assert.Equal(t, entities.SideTai, side)

	_, err = DiceSum{}.ParseSide("cua")
	assert.ErrorIs(t, err, ErrInvalidSide)

	side, err = AnimalDice{}.ParseSide("ca")
	require.NoError(t, err)
	assert.Equal(t, entities.SideFish, side)
}

func TestAcceptStake(t *testing.T) {
	t.Parallel()

	bet := entities.NewSessionBet(1)
	bet.Stakes[entities.SideTai] = 1000

	assert.NoError(t, DiceSum{}.AcceptStake(nil, entities.SideXiu))
	assert.NoError(t, DiceSum{}.AcceptStake(bet, entities.SideTai))
	assert.ErrorIs(t, DiceSum{}.AcceptStake(bet, entities.SideXiu), ErrSideAlreadyCommitted)
	assert.NoError(t, AnimalDice{}.AcceptStake(bet, entities.SideFish))
}

func TestComputePayout(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(1800), DiceSum{}.ComputePayout(1000, 1))
	assert.Equal(t, int64(0), DiceSum{}.ComputePayout(1000, 0))
	assert.Equal(t, int64(180), DiceSum{}.ComputePayout(100, 1))
	// floor(333 * 0.8) = 266
	assert.Equal(t, int64(599), DiceSum{}.ComputePayout(333, 1))

	assert.Equal(t, int64(900), AnimalDice{}.ComputePayout(500, 1))
	assert.Equal(t, int64(1300), AnimalDice{}.ComputePayout(500, 2))
	assert.Equal(t, int64(1700), AnimalDice{}.ComputePayout(500, 3))
	assert.Equal(t, int64(0), AnimalDice{}.ComputePayout(500, 0))
}

func TestForKind(t *testing.T) {
	t.Parallel()

	rules, err := ForKind(entities.GameKindDiceSum)
	require.NoError(t, err)
	assert.True(t, rules.JackpotEnabled())
	assert.False(t, rules.StickyAmount())

	rules, err = ForKind(entities.GameKindAnimalDice)
	require.NoError(t, err)
	assert.False(t, rules.JackpotEnabled())
	assert.True(t, rules.StickyAmount())
	assert.Len(t, rules.Sides(), 6)

	_, err = ForKind("poker")
	assert.Error(t, err)
}
