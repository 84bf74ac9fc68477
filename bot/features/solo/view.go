package solo

import (
	"fmt"
	"strconv"
	"strings"

	"dicehall/bot/common"
	"dicehall/domain/entities"
	"dicehall/domain/game"
	"dicehall/domain/services"
	"dicehall/domain/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	actionAmount = "amount"
	actionSide   = "side"
	actionRoll   = "roll"
	actionClear  = "clear"
	actionAgain  = "again"
	actionQuit   = "quit"
)

// buttonID binds a button to one game and its owner: solo_<action>_<gameID>_<ownerID>[_<arg>]
func buttonID(action string, g *services.SoloGame, arg ...string) string {
	args := append([]string{g.ID, strconv.FormatInt(g.UserID, 10)}, arg...)
	return common.BuildCustomID(common.PrefixSolo, action, args...)
}

func gameEmbed(g *services.SoloGame, balance int64, name string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🎲 %s · %s", g.Kind.DisplayName(), name),
		Color: common.ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Chip", Value: utils.FormatAmount(g.Amount), Inline: true},
			{Name: "Staked", Value: utils.FormatAmount(g.Staked()), Inline: true},
			{Name: "Balance", Value: common.FormatBalance(balance), Inline: true},
		},
	}
	if stakes := describeStakes(g.Stakes); stakes != "" {
		embed.Description = stakes
	} else {
		embed.Description = "Pick a chip, then a side, then roll."
	}
	return embed
}

func describeStakes(stakes map[entities.Side]int64) string {
	var lines []string
	for _, side := range sortedSides(stakes) {
		lines = append(lines, fmt.Sprintf("%s **%s** · %s", side.Emoji(), side.Label(), utils.FormatAmount(stakes[side])))
	}
	return strings.Join(lines, "\n")
}

func sortedSides(stakes map[entities.Side]int64) []entities.Side {
	bet := &entities.SessionBet{Stakes: stakes}
	return bet.Sides()
}

func resultEmbed(result *services.SoloResult, kind entities.GameKind, name string) *discordgo.MessageEmbed {
	line := result.Line
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎲 %s · %s", kind.DisplayName(), name),
		Description: describeOutcome(result.Outcome),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Staked", Value: utils.FormatAmount(line.Staked), Inline: true},
			{Name: "Net", Value: utils.FormatSigned(line.Net), Inline: true},
			{Name: "Balance", Value: common.FormatBalance(result.Balance), Inline: true},
		},
	}
	if line.Won {
		embed.Color = common.ColorSuccess
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "You won!"}
	} else {
		embed.Color = common.ColorDanger
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Better luck next roll."}
	}
	return embed
}

var dieEmoji = [7]string{"", "⚀", "⚁", "⚂", "⚃", "⚄", "⚅"}

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

// gameComponents are the buttons of an open game: chips, sides and the roll/clear/quit row
func gameComponents(g *services.SoloGame) []discordgo.MessageComponent {
	rules, err := game.ForKind(g.Kind)
	if err != nil {
		return nil
	}

	var rows []discordgo.MessageComponent
	chips := make([]discordgo.MessageComponent, 0, common.MaxButtonsPerRow)
	for _, amount := range rules.Chips() {
		if len(chips) == common.MaxButtonsPerRow {
			break
		}
		style := discordgo.SecondaryButton
		if amount == g.Amount {
			style = discordgo.PrimaryButton
		}
		chips = append(chips, discordgo.Button{
			Label:    common.FormatChip(amount),
			Style:    style,
			CustomID: buttonID(actionAmount, g, strconv.FormatInt(amount, 10)),
		})
	}
	rows = append(rows, discordgo.ActionsRow{Components: chips})

	// DiceSum takes one side per game
	locked := g.Kind == entities.GameKindDiceSum && g.Staked() > 0
	perRow := common.MaxButtonsPerRow
	if g.Kind == entities.GameKindAnimalDice {
		perRow = 3
	}
	var current []discordgo.MessageComponent
	for _, side := range rules.Sides() {
		current = append(current, discordgo.Button{
			Label:    side.Label(),
			Style:    discordgo.SuccessButton,
			Emoji:    &discordgo.ComponentEmoji{Name: side.Emoji()},
			CustomID: buttonID(actionSide, g, string(side)),
			Disabled: locked,
		})
		if len(current) == perRow {
			rows = append(rows, discordgo.ActionsRow{Components: current})
			current = nil
		}
	}
	if len(current) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: current})
	}

	staked := g.Staked() > 0
	rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{Label: "Roll", Style: discordgo.DangerButton, Emoji: &discordgo.ComponentEmoji{Name: "🎲"}, CustomID: buttonID(actionRoll, g), Disabled: !staked},
		discordgo.Button{Label: "Clear", Style: discordgo.SecondaryButton, CustomID: buttonID(actionClear, g), Disabled: !staked},
		discordgo.Button{Label: "Quit", Style: discordgo.SecondaryButton, CustomID: buttonID(actionQuit, g)},
	}})
	return rows
}

// resultComponents follow a roll: DiceSum offers a new game, AnimalDice goes back to the table
func resultComponents(g *services.SoloGame) []discordgo.MessageComponent {
	if g == nil {
		return []discordgo.MessageComponent{}
	}
	if g.Kind == entities.GameKindAnimalDice {
		return gameComponents(g)
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Play again", Style: discordgo.PrimaryButton, Emoji: &discordgo.ComponentEmoji{Name: "🔁"}, CustomID: buttonID(actionAgain, g)},
			discordgo.Button{Label: "Quit", Style: discordgo.SecondaryButton, CustomID: buttonID(actionQuit, g)},
		}},
	}
}
