package admin

import (
	"fmt"
	"strings"

	"dicehall/bot/common"
	"dicehall/domain/entities"
	"dicehall/domain/interfaces"
	"dicehall/domain/utils"

	"github.com/bwmarrin/discordgo"
)

func adjustmentMessage(action string, adj *interfaces.BalanceAdjustment) string {
	verb := map[string]string{
		"addmoney":   "Adjusted",
		"setmoney":   "Set",
		"resetmoney": "Reset",
	}[action]
	return fmt.Sprintf("🛠️ %s %s's balance: %s → **%s**",
		verb, common.GetUserMention(adj.DiscordID), utils.FormatAmount(adj.BalanceBefore), common.FormatCoins(adj.BalanceAfter))
}

func revenueEmbed(stats *entities.RevenueStats) *discordgo.MessageEmbed {
	profit := stats.Profit()
	trend := "📈"
	if profit < 0 {
		trend = "📉"
	}

	embed := &discordgo.MessageEmbed{
		Title: "📊 Revenue",
		Color: common.ColorGold,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💰 Topped up", Value: utils.FormatAmount(stats.TotalRevenue), Inline: true},
			{Name: "📝 Transfers", Value: fmt.Sprintf("%d", stats.TotalTransactions), Inline: true},
			{Name: "💳 Held by members", Value: utils.FormatAmount(stats.TotalUserBalance), Inline: true},
			{Name: trend + " Profit", Value: utils.FormatSigned(profit), Inline: true},
		},
	}

	if len(stats.Recent) > 0 {
		lines := make([]string, 0, len(stats.Recent))
		for _, topup := range stats.Recent {
			paid := "?"
			if topup.PaidAt != nil {
				paid = topup.PaidAt.Format("02/01 15:04")
			}
			lines = append(lines, fmt.Sprintf("`%s` %s · %s · %s", topup.Code, common.GetUserMention(topup.DiscordID), utils.FormatAmount(topup.Amount), paid))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Recent topups",
			Value: strings.Join(lines, "\n"),
		})
	}
	return embed
}
