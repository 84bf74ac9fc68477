package sessions

import (
	"fmt"
	"strings"

	"dicehall/bot/common"
	"dicehall/domain/entities"
	"dicehall/domain/session"
	"dicehall/domain/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	boardImageName  = "board.png"
	resultImageName = "result.png"

	maxWinnerLines = 10
)

var dieEmoji = [7]string{"", "⚀", "⚁", "⚂", "⚃", "⚄", "⚅"}

func boardEmbed(view session.BoardView) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎲 %s · Round %d", view.Kind.DisplayName(), view.Round),
		Description: fmt.Sprintf("Pick a chip, then a side. Betting closes in **%ds**.", view.Remaining),
		Color:       common.ColorPrimary,
		Image:       &discordgo.MessageEmbedImage{URL: "attachment://" + boardImageName},
	}

	for _, side := range view.Sides {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%s %s", side.Emoji(), side.Label()),
			Value:  utils.FormatAmount(view.Totals[side]),
			Inline: true,
		})
	}

	footer := fmt.Sprintf("Players: %d", view.Players)
	if view.Kind == entities.GameKindDiceSum {
		footer += " · Jackpot: " + utils.FormatAmount(view.Jackpot)
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	return embed
}

// describeOutcome renders the dice as text, e.g. "⚂ ⚄ ⚅ = **14** → 🔴 **TAI**"
func describeOutcome(outcome entities.Outcome) string {
	if outcome.Kind == entities.GameKindAnimalDice {
		faces := make([]string, 0, len(outcome.Faces))
		for _, face := range outcome.Faces {
			faces = append(faces, fmt.Sprintf("%s **%s**", face.Emoji(), face.Label()))
		}
		return strings.Join(faces, "  ")
	}

	dice := make([]string, 0, len(outcome.Dice))
	for _, face := range outcome.Dice {
		if face >= 1 && face <= 6 {
			dice = append(dice, dieEmoji[face])
		}
	}
	text := fmt.Sprintf("%s = **%d** → %s **%s**", strings.Join(dice, " "), outcome.Sum, outcome.Side.Emoji(), outcome.Side.Label())
	if outcome.Triple {
		text += " · 💥 TRIPLE"
	}
	return text
}

func resultEmbed(view session.ResultView) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎲 %s · Round %d result", view.Kind.DisplayName(), view.Round),
		Description: describeOutcome(view.Outcome),
		Color:       common.ColorGold,
		Image:       &discordgo.MessageEmbedImage{URL: "attachment://" + resultImageName},
	}

	var winners []string
	for _, line := range view.Lines {
		if !line.Won {
			continue
		}
		if len(winners) == maxWinnerLines {
			winners = append(winners, fmt.Sprintf("…and %d more", countWinners(view.Lines)-maxWinnerLines))
			break
		}
		winners = append(winners, fmt.Sprintf("%s **%s**", line.DisplayName, utils.FormatSigned(line.Net)))
	}
	switch {
	case len(view.Lines) == 0:
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Winners", Value: "No bets this round"})
	case len(winners) == 0:
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Winners", Value: "The house takes it all"})
	default:
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Winners", Value: strings.Join(winners, "\n")})
	}

	if view.JackpotPaid > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "💰 Jackpot",
			Value: fmt.Sprintf("**%s** shared between the winners", utils.FormatAmount(view.JackpotPaid)),
		})
	}
	if view.Kind == entities.GameKindDiceSum {
		footer := "Jackpot: " + utils.FormatAmount(view.Jackpot)
		if view.JackpotUnknown {
			footer = "Jackpot: unavailable"
		}
		embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	}
	return embed
}

func countWinners(lines []session.ResultLine) int {
	var n int
	for _, line := range lines {
		if line.Won {
			n++
		}
	}
	return n
}

func restoreMessage(snapshot entities.SessionSnapshot) string {
	return fmt.Sprintf("♻️ **%s** is back after a restart and continues at round %d. Bets from the interrupted round were not carried over.",
		snapshot.Kind.DisplayName(), snapshot.Round)
}

func statusEmbed(info session.Info) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🎲 %s · Round %d", info.Kind.DisplayName(), info.Round),
		Color: common.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Phase", Value: string(info.Phase), Inline: true},
			{Name: "Time left", Value: fmt.Sprintf("%ds", info.Remaining), Inline: true},
			{Name: "Players", Value: fmt.Sprintf("%d", info.Players), Inline: true},
			{Name: "Staked", Value: utils.FormatAmount(info.TotalStaked), Inline: true},
		},
	}
}

func betConfirmation(receipt *session.BetReceipt) string {
	return fmt.Sprintf("✅ Bet **%s** on %s **%s** (round %d, your total on it: %s). Balance: **%s**",
		utils.FormatAmount(receipt.Amount), receipt.Side.Emoji(), receipt.Side.Label(), receipt.Round,
		utils.FormatAmount(receipt.SideStake), common.FormatCoins(receipt.Balance))
}
