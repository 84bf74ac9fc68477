package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoveTierFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		points int64
		want   LoveTier
	}{
		{points: 0, want: LoveTierBreaking},
		{points: 1, want: LoveTierTroubled},
		{points: 49, want: LoveTierTroubled},
		{points: 50, want: LoveTierOrdinary},
		{points: 150, want: LoveTierWarm},
		{points: 299, want: LoveTierWarm},
		{points: 300, want: LoveTierBlissful},
		{points: 500, want: LoveTierEternal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LoveTierFor(tt.points), "points=%d", tt.points)
	}
}

func TestExtractTopupCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		description string
		want        string
		found       bool
	}{
		{name: "exact code", description: "ABC1234", want: "ABC1234", found: true},
		{name: "lower case inside text", description: "chuyen tien xyz9876 cam on", want: "XYZ9876", found: true},
		{name: "first match wins", description: "AAA1111 BBB2222", want: "AAA1111", found: true},
		{name: "too few digits", description: "ABC123", found: false},
		{name: "empty", description: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractTopupCode(tt.description)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseGameKind(t *testing.T) {
	t.Parallel()

	kind, err := ParseGameKind("taixiu")
	require.NoError(t, err)
	assert.Equal(t, GameKindDiceSum, kind)

	kind, err = ParseGameKind("Animal_Dice")
	require.NoError(t, err)
	assert.Equal(t, GameKindAnimalDice, kind)

	_, err = ParseGameKind("poker")
	assert.Error(t, err)
}

func TestSessionBet(t *testing.T) {
	t.Parallel()

	bet := NewSessionBet(7)
	bet.Stakes[SideCrab] = 500
	bet.Stakes[SideFish] = 250

	assert.Equal(t, int64(750), bet.Total())
	assert.Equal(t, []Side{SideFish, SideCrab}, bet.Sides())

	clone := bet.Clone()
	clone.Stakes[SideCrab] = 1
	assert.Equal(t, int64(500), bet.Stakes[SideCrab])
}

func TestTopupExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now()
	topup := &Topup{ExpiresAt: now}
	assert.True(t, topup.IsExpiredAt(now))
	assert.False(t, topup.IsExpiredAt(now.Add(-time.Second)))
}

func TestMarriagePartnerOf(t *testing.T) {
	t.Parallel()

	m := &Marriage{User1ID: 1, User2ID: 2, LovePoints: 100}
	assert.Equal(t, int64(2), m.PartnerOf(1))
	assert.Equal(t, int64(1), m.PartnerOf(2))
	assert.Equal(t, int64(0), m.PartnerOf(3))
	assert.Equal(t, LoveTierOrdinary, m.Tier())
}
