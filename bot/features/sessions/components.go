package sessions

import (
	"strconv"

	"dicehall/bot/common"
	"dicehall/domain/entities"
	"dicehall/domain/session"

	"github.com/bwmarrin/discordgo"
)

const (
	actionAmount = "amount"
	actionSide   = "side"
)

// AmountButtonID is the custom ID of a chip button for a round
func AmountButtonID(round int, amount int64) string {
	return common.BuildCustomID(common.PrefixSession, actionAmount, strconv.Itoa(round), strconv.FormatInt(amount, 10))
}

// SideButtonID is the custom ID of a side button for a round
func SideButtonID(round int, side entities.Side) string {
	return common.BuildCustomID(common.PrefixSession, actionSide, strconv.Itoa(round), string(side))
}

// BoardComponents builds one row of chip buttons followed by the side buttons
func BoardComponents(view session.BoardView) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent

	chips := make([]discordgo.MessageComponent, 0, len(view.Chips))
	for _, amount := range view.Chips {
		if len(chips) == common.MaxButtonsPerRow {
			break
		}
		chips = append(chips, discordgo.Button{
			Label:    common.FormatChip(amount),
			Style:    discordgo.SecondaryButton,
			CustomID: AmountButtonID(view.Round, amount),
			Emoji:    &discordgo.ComponentEmoji{Name: "🪙"},
		})
	}
	if len(chips) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: chips})
	}

	perRow := common.MaxButtonsPerRow
	if view.Kind == entities.GameKindAnimalDice {
		perRow = 3
	}
	var current []discordgo.MessageComponent
	for _, side := range view.Sides {
		current = append(current, discordgo.Button{
			Label:    side.Label(),
			Style:    sideStyle(side),
			CustomID: SideButtonID(view.Round, side),
			Emoji:    &discordgo.ComponentEmoji{Name: side.Emoji()},
		})
		if len(current) == perRow {
			rows = append(rows, discordgo.ActionsRow{Components: current})
			current = nil
		}
	}
	if len(current) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: current})
	}

	if len(rows) > common.MaxActionRows {
		rows = rows[:common.MaxActionRows]
	}
	return rows
}

func sideStyle(side entities.Side) discordgo.ButtonStyle {
	switch side {
	case entities.SideTai:
		return discordgo.DangerButton
	case entities.SideXiu:
		return discordgo.PrimaryButton
	default:
		return discordgo.SuccessButton
	}
}
