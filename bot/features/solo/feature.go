// Package solo runs private one-player dice games started with /taixiu and /baucua.
package solo

import (
	"context"
	"fmt"

	"dicehall/bot/common"
	"dicehall/domain/entities"
	"dicehall/domain/game"
	"dicehall/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature handles the solo commands and the solo_ buttons
type Feature struct {
	games *services.SoloService
}

// New creates the solo feature over the shared solo table
func New(games *services.SoloService) *Feature {
	return &Feature{games: games}
}

// HandleCommand opens a game of the command's variant
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	kind := entities.GameKindDiceSum
	if i.ApplicationCommandData().Name == "baucua" {
		kind = entities.GameKindAnimalDice
	}
	if err := f.start(s, i, kind); err != nil {
		common.HandleError(s, i, err, false)
	}
}

func (f *Feature) start(s *discordgo.Session, i *discordgo.InteractionCreate, kind entities.GameKind) error {
	actor, err := common.ActorFrom(i)
	if err != nil {
		return err
	}
	ctx := context.Background()

	g, err := f.games.Start(ctx, actor.GuildID, actor.UserID, actor.ChannelID, kind)
	if err != nil {
		return common.FromDomainError(err, "failed to start solo game")
	}

	log.WithFields(log.Fields{
		"guildID": actor.GuildID,
		"userID":  actor.UserID,
		"gameID":  g.ID,
		"kind":    kind,
	}).Info("Solo game opened")

	balance, err := f.balance(ctx, g)
	if err != nil {
		return err
	}
	common.Respond(s, i, &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{gameEmbed(g, balance, actor.Name)},
		Components: gameComponents(g),
	})
	return nil
}

// HandleInteraction handles a button on a solo game message
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := f.handleButton(s, i); err != nil {
		common.HandleError(s, i, err, false)
	}
}

func (f *Feature) handleButton(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	id, err := common.ParseCustomID(i.MessageComponentData().CustomID)
	if err != nil {
		return common.NewSystemError(err, "bad solo button")
	}
	actor, err := common.ActorFrom(i)
	if err != nil {
		return err
	}
	gameID, err := id.Arg(0)
	if err != nil {
		return common.NewSystemError(err, "bad solo button game")
	}
	ownerID, err := id.IntArg(1)
	if err != nil {
		return common.NewSystemError(err, "bad solo button owner")
	}
	if ownerID != actor.UserID {
		return common.NewUserError("This is not your game. Start your own with /taixiu or /baucua.", "solo button pressed by another member")
	}

	ctx := context.Background()
	switch id.Action {
	case actionAmount:
		amount, err := id.IntArg(2)
		if err != nil {
			return common.NewSystemError(err, "bad solo chip")
		}
		g, err := f.games.SelectAmount(ctx, actor.GuildID, actor.UserID, gameID, amount)
		if err != nil {
			return common.FromDomainError(err, "failed to select solo chip")
		}
		return f.redraw(ctx, s, i, g, actor.Name)

	case actionSide:
		raw, err := id.Arg(2)
		if err != nil {
			return common.NewSystemError(err, "bad solo side")
		}
		g, err := f.games.Stake(ctx, actor.GuildID, actor.UserID, gameID, entities.Side(raw))
		if err != nil {
			return common.FromDomainError(err, "failed to stake solo side")
		}
		return f.redraw(ctx, s, i, g, actor.Name)

	case actionClear:
		g, err := f.games.Clear(ctx, actor.GuildID, actor.UserID, gameID)
		if err != nil {
			return common.FromDomainError(err, "failed to clear solo stakes")
		}
		return f.redraw(ctx, s, i, g, actor.Name)

	case actionRoll:
		current, ok := f.games.Get(actor.GuildID, actor.UserID)
		if !ok {
			return common.FromDomainError(game.ErrGameExpired, "roll on a closed solo game")
		}
		result, err := f.games.Roll(ctx, actor.GuildID, actor.UserID, gameID)
		if err != nil {
			return common.FromDomainError(err, "failed to roll solo game")
		}
		log.WithFields(log.Fields{
			"guildID": actor.GuildID,
			"userID":  actor.UserID,
			"gameID":  gameID,
			"net":     result.Line.Net,
		}).Debug("Solo game rolled")
		common.UpdateMessage(s, i, &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{resultEmbed(result, current.Kind, actor.Name)},
			Components: resultComponents(result.Game),
		})
		return nil

	case actionAgain:
		g, err := f.games.Continue(ctx, actor.GuildID, actor.UserID, gameID)
		if err != nil {
			return common.FromDomainError(err, "failed to continue solo game")
		}
		return f.redraw(ctx, s, i, g, actor.Name)

	case actionQuit:
		refunded, err := f.games.Quit(ctx, actor.GuildID, actor.UserID, gameID)
		if err != nil {
			return common.FromDomainError(err, "failed to quit solo game")
		}
		content := "👋 Game closed."
		if refunded > 0 {
			content = fmt.Sprintf("👋 Game closed. %s returned to your balance.", common.FormatCoins(refunded))
		}
		common.UpdateMessage(s, i, &discordgo.InteractionResponseData{
			Content:    content,
			Embeds:     []*discordgo.MessageEmbed{},
			Components: []discordgo.MessageComponent{},
		})
		return nil

	default:
		return common.NewSystemError(fmt.Errorf("unknown action %q", id.Action), "bad solo button")
	}
}

func (f *Feature) redraw(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, g *services.SoloGame, name string) error {
	balance, err := f.balance(ctx, g)
	if err != nil {
		return err
	}
	common.UpdateMessage(s, i, &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{gameEmbed(g, balance, name)},
		Components: gameComponents(g),
	})
	return nil
}

func (f *Feature) balance(ctx context.Context, g *services.SoloGame) (int64, error) {
	balance, err := f.games.Balance(ctx, g.GuildID, g.UserID)
	if err != nil {
		return 0, common.NewSystemError(err, "failed to read balance for solo game")
	}
	return balance, nil
}
