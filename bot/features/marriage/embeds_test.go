package marriage

import (
	"testing"
	"time"

	"dicehall/domain/entities"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposalMessage(t *testing.T) {
	t.Parallel()

	data := proposalMessage(&entities.Proposal{
		ProposerID: 1,
		TargetID:   2,
		RingName:   "Diamond",
		RingEmoji:  "💎",
	})

	assert.Equal(t, "<@2>", data.Content)
	require.Len(t, data.Embeds, 1)
	assert.Contains(t, data.Embeds[0].Description, "💎 **Diamond**")
	assert.Equal(t, "The proposal lapses in 1m", data.Embeds[0].Footer.Text)

	row := data.Components[0].(discordgo.ActionsRow)
	assert.Equal(t, "marry_accept_2", row.Components[0].(discordgo.Button).CustomID)
	assert.Equal(t, "marry_deny_2", row.Components[1].(discordgo.Button).CustomID)
}

func TestStatusEmbed(t *testing.T) {
	t.Parallel()

	married := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	marriage := &entities.Marriage{User1ID: 1, User2ID: 2, RingName: "Gold", LovePoints: 320, MarriedAt: married}

	embed := statusEmbed(marriage, 2, married.Add(72*time.Hour))
	assert.Equal(t, "<@1>", embed.Fields[0].Value)
	assert.Equal(t, "💍 **Gold**", embed.Fields[1].Value)
	assert.Equal(t, "3 days", embed.Fields[2].Value)
	assert.Equal(t, "💖 Blissful", embed.Fields[4].Value)
}

func TestAffinityMessage(t *testing.T) {
	t.Parallel()

	marriage := &entities.Marriage{User1ID: 1, User2ID: 2, LovePoints: 40}

	assert.Equal(t, "💕 <@1> showers <@2> with love: **+12** points (40, 💔 Troubled)",
		affinityMessage(true, 1, marriage, 12))
	assert.Equal(t, "😤 <@2> picks a fight with <@1>: **-15** points (40, 💔 Troubled)",
		affinityMessage(false, 2, marriage, -15))
}

func TestTierLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "💞 Eternal love", tierLabel(entities.LoveTierEternal))
	assert.Equal(t, "🖤 On the edge", tierLabel(entities.LoveTierBreaking))
}
