package sessions

import (
	"testing"

	"dicehall/bot/common"
	"dicehall/domain/entities"
	"dicehall/domain/game"
	"dicehall/domain/session"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buttons(t *testing.T, row discordgo.MessageComponent) []discordgo.Button {
	t.Helper()
	actions, ok := row.(discordgo.ActionsRow)
	require.True(t, ok)
	out := make([]discordgo.Button, 0, len(actions.Components))
	for _, c := range actions.Components {
		button, ok := c.(discordgo.Button)
		require.True(t, ok)
		out = append(out, button)
	}
	return out
}

func TestBoardComponents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		rules     game.Rules
		rows      int
		sideSizes []int
	}{
		{"dice sum", game.DiceSum{}, 2, []int{2}},
		{"animal dice", game.AnimalDice{}, 3, []int{3, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			view := session.BoardView{Kind: tt.rules.Kind(), Round: 5, Sides: tt.rules.Sides(), Chips: tt.rules.Chips()}
			rows := BoardComponents(view)
			require.Len(t, rows, tt.rows)

			chips := buttons(t, rows[0])
			require.Len(t, chips, len(tt.rules.Chips()))
			for i, chip := range chips {
				id, err := common.ParseCustomID(chip.CustomID)
				require.NoError(t, err)
				assert.Equal(t, common.PrefixSession, id.Feature)
				assert.Equal(t, actionAmount, id.Action)
				round, _ := id.IntArg(0)
				amount, _ := id.IntArg(1)
				assert.Equal(t, int64(5), round)
				assert.Equal(t, tt.rules.Chips()[i], amount)
			}

			var sides []entities.Side
			for i, size := range tt.sideSizes {
				row := buttons(t, rows[i+1])
				assert.Len(t, row, size)
				for _, button := range row {
					id, err := common.ParseCustomID(button.CustomID)
					require.NoError(t, err)
					sides = append(sides, entities.Side(id.Args[1]))
				}
			}
			assert.Equal(t, tt.rules.Sides(), sides)
		})
	}
}

func TestDescribeOutcome(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "⚀ ⚁ ⚃ = **7** → ⚪ **XIU**", describeOutcome(game.DiceSumOutcome([3]int{1, 2, 4})))
	assert.Contains(t, describeOutcome(game.DiceSumOutcome([3]int{2, 2, 2})), "TRIPLE")
	assert.Equal(t, "🦌 **NAI**  🦀 **CUA**  🦀 **CUA**", describeOutcome(game.AnimalDiceOutcome([3]int{1, 5, 5})))
}

func TestBetConfirmation(t *testing.T) {
	t.Parallel()

	text := betConfirmation(&session.BetReceipt{Round: 2, Side: entities.SideTai, Amount: 1000, SideStake: 1500, Balance: 8500})
	assert.Contains(t, text, "**1,000**")
	assert.Contains(t, text, "TAI")
	assert.Contains(t, text, "1,500")
	assert.Contains(t, text, "8,500 coins")
}

func TestResultEmbed_JackpotFooter(t *testing.T) {
	t.Parallel()

	view := session.ResultView{
		Kind:    entities.GameKindDiceSum,
		Round:   3,
		Outcome: game.DiceSumOutcome([3]int{4, 4, 4}),
	}
	embed := resultEmbed(view)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Jackpot: 0", embed.Footer.Text)

	view.JackpotUnknown = true
	embed = resultEmbed(view)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Jackpot: unavailable", embed.Footer.Text)
}
