package solo

import (
	"testing"

	"dicehall/bot/common"
	"dicehall/domain/entities"
	"dicehall/domain/game"
	"dicehall/domain/services"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func soloGame(kind entities.GameKind, stakes map[entities.Side]int64) *services.SoloGame {
	if stakes == nil {
		stakes = map[entities.Side]int64{}
	}
	return &services.SoloGame{
		ID:      "ab12cd34",
		GuildID: 1,
		UserID:  42,
		Kind:    kind,
		Amount:  1000,
		Stakes:  stakes,
	}
}

func buttons(t *testing.T, row discordgo.MessageComponent) []discordgo.Button {
	t.Helper()
	actions, ok := row.(discordgo.ActionsRow)
	require.True(t, ok)
	out := make([]discordgo.Button, 0, len(actions.Components))
	for _, c := range actions.Components {
		b, ok := c.(discordgo.Button)
		require.True(t, ok)
		out = append(out, b)
	}
	return out
}

func TestButtonID(t *testing.T) {
	t.Parallel()

	id, err := common.ParseCustomID(buttonID(actionSide, soloGame(entities.GameKindDiceSum, nil), "tai"))
	require.NoError(t, err)
	assert.Equal(t, common.PrefixSolo, id.Feature)
	assert.Equal(t, actionSide, id.Action)

	gameID, _ := id.Arg(0)
	owner, _ := id.IntArg(1)
	side, _ := id.Arg(2)
	assert.Equal(t, "ab12cd34", gameID)
	assert.Equal(t, int64(42), owner)
	assert.Equal(t, "tai", side)
}

func TestGameComponents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		game         *services.SoloGame
		wantRows     int
		sidesLocked  bool
		rollDisabled bool
	}{
		{
			name:         "dice sum without stake",
			game:         soloGame(entities.GameKindDiceSum, nil),
			wantRows:     3,
			rollDisabled: true,
		},
		{
			name:        "dice sum with a side taken",
			game:        soloGame(entities.GameKindDiceSum, map[entities.Side]int64{entities.SideTai: 1000}),
			wantRows:    3,
			sidesLocked: true,
		},
		{
			name:     "animal dice keeps every side open",
			game:     soloGame(entities.GameKindAnimalDice, map[entities.Side]int64{entities.SideCrab: 500}),
			wantRows: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rows := gameComponents(tt.game)
			require.Len(t, rows, tt.wantRows)

			chips := buttons(t, rows[0])
			for _, chip := range chips {
				if chip.Label == common.FormatChip(tt.game.Amount) {
					assert.Equal(t, discordgo.PrimaryButton, chip.Style)
				}
			}

			side := buttons(t, rows[1])[0]
			assert.Equal(t, tt.sidesLocked, side.Disabled)

			controls := buttons(t, rows[len(rows)-1])
			require.Len(t, controls, 3)
			assert.Equal(t, "Roll", controls[0].Label)
			assert.Equal(t, tt.rollDisabled, controls[0].Disabled)
		})
	}
}

func TestResultComponents(t *testing.T) {
	t.Parallel()

	finished := soloGame(entities.GameKindDiceSum, nil)
	finished.Finished = true
	rows := resultComponents(finished)
	require.Len(t, rows, 1)
	row := buttons(t, rows[0])
	assert.Equal(t, "Play again", row[0].Label)

	animal := soloGame(entities.GameKindAnimalDice, nil)
	assert.Len(t, resultComponents(animal), 4)

	assert.Empty(t, resultComponents(nil))
}

func TestResultEmbed(t *testing.T) {
	t.Parallel()

	outcome := game.DiceSumOutcome([3]int{6, 5, 4})
	result := &services.SoloResult{
		Outcome: outcome,
		Line:    game.PayoutLine{Staked: 1000, Returned: 1800, Net: 800, Won: true},
		Balance: 10800,
	}

	embed := resultEmbed(result, entities.GameKindDiceSum, "Mai")
	assert.Contains(t, embed.Description, "**15**")
	assert.Contains(t, embed.Description, "TAI")
	assert.Equal(t, common.ColorSuccess, embed.Color)
	assert.Equal(t, "+800", embed.Fields[1].Value)
}

func TestDescribeStakes(t *testing.T) {
	t.Parallel()

	text := describeStakes(map[entities.Side]int64{entities.SideCrab: 500, entities.SideDeer: 1000})
	assert.Equal(t, "🦀 **CUA** · 500\n🦌 **NAI** · 1,000", text)
	assert.Empty(t, describeStakes(nil))
}
