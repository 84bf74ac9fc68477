package shop

import (
	"fmt"
	"strings"

	"dicehall/bot/common"
	"dicehall/domain/entities"
	"dicehall/domain/utils"

	"github.com/bwmarrin/discordgo"
)

const defaultRingEmoji = "💍"

func ringEmoji(emoji string) string {
	if emoji == "" {
		return defaultRingEmoji
	}
	return emoji
}

func catalogEmbed(rings []*entities.Ring) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "💍 Ring shop",
		Color: common.ColorLove,
	}
	if len(rings) == 0 {
		embed.Description = "The shop is empty. Admins can stock it with `/ring add`."
		return embed
	}

	lines := make([]string, 0, len(rings))
	for _, ring := range rings {
		lines = append(lines, fmt.Sprintf("%s **%s** · %s", ringEmoji(ring.Emoji), ring.Name, common.FormatCoins(ring.Price)))
	}
	embed.Description = strings.Join(lines, "\n")
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Buy one with /ring buy"}
	return embed
}

// inventoryEmbed numbers items from 1, the index /marry propose takes
func inventoryEmbed(name string, items []*entities.InventoryItem) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🎒 %s's inventory", name),
		Color: common.ColorLove,
	}
	if len(items) == 0 {
		embed.Description = "No rings yet. Browse the shop with `/ring list`."
		return embed
	}

	lines := make([]string, 0, len(items))
	for idx, item := range items {
		lines = append(lines, fmt.Sprintf("`%d.` %s **%s** · bought for %s", idx+1, ringEmoji(item.RingEmoji), item.RingName, utils.FormatAmount(item.RingPrice)))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}
