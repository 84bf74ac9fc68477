// Package sessions runs the channel-wide recurring games from Discord:
// the /session command, the bet buttons and the presenter the engine draws through.
package sessions

import (
	"context"
	"errors"
	"fmt"

	"dicehall/bot/common"
	"dicehall/domain/entities"
	"dicehall/domain/game"
	"dicehall/domain/session"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature handles /session and the session_ buttons
type Feature struct {
	registry *session.Registry
}

// NewFeature creates the sessions feature over the process registry
func NewFeature(registry *session.Registry) *Feature {
	return &Feature{registry: registry}
}

// HandleCommand routes /session subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub, _ := common.SubcommandOptions(i)

	var err error
	switch sub {
	case "taixiu":
		err = f.start(s, i, entities.GameKindDiceSum)
	case "baucua":
		err = f.start(s, i, entities.GameKindAnimalDice)
	case "stop":
		err = f.stop(s, i)
	case "status":
		err = f.status(s, i)
	default:
		err = common.NewUserError("Unknown session command.", fmt.Sprintf("unknown subcommand %q", sub))
	}
	if err != nil {
		common.HandleError(s, i, err, false)
	}
}

func (f *Feature) start(s *discordgo.Session, i *discordgo.InteractionCreate, kind entities.GameKind) error {
	if !common.CanManageChannels(i) {
		return common.NewUserError("You need the Manage Channels permission to start a session.", "missing manage channels permission")
	}
	actor, err := common.ActorFrom(i)
	if err != nil {
		return err
	}

	// the first board is posted before Start returns, which can outlast the reply window
	if err := common.DeferEphemeral(s, i); err != nil {
		return common.NewSystemError(err, "failed to defer session start")
	}

	ctx := context.Background()
	if _, err := f.registry.Start(ctx, actor.ChannelID, actor.GuildID, kind); err != nil {
		common.HandleError(s, i, common.FromDomainError(err, "failed to start session"), true)
		return nil
	}
	common.FollowUp(s, i, fmt.Sprintf("🎲 **%s** is running in this channel.", kind.DisplayName()))

	log.WithFields(log.Fields{
		"channelID": actor.ChannelID,
		"guildID":   actor.GuildID,
		"gameKind":  kind,
		"userID":    actor.UserID,
	}).Info("Session started from Discord")
	return nil
}

func (f *Feature) stop(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if !common.CanManageChannels(i) {
		return common.NewUserError("You need the Manage Channels permission to stop a session.", "missing manage channels permission")
	}
	actor, err := common.ActorFrom(i)
	if err != nil {
		return err
	}

	stopped, err := f.registry.Stop(context.Background(), actor.ChannelID)
	if err != nil {
		return common.NewSystemError(err, "failed to stop session")
	}
	if !stopped {
		return common.FromDomainError(game.ErrNoActiveSession, "stop without session")
	}

	common.Respond(s, i, &discordgo.InteractionResponseData{
		Content: fmt.Sprintf("🛑 %s stopped the game session in this channel.", common.GetUserMention(actor.UserID)),
	})
	return nil
}

func (f *Feature) status(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	actor, err := common.ActorFrom(i)
	if err != nil {
		return err
	}
	handle, ok := f.registry.Get(actor.ChannelID)
	if !ok {
		return common.FromDomainError(game.ErrNoActiveSession, "status without session")
	}
	info, err := handle.Info(context.Background())
	if err != nil {
		return common.FromDomainError(err, "failed to read session info")
	}
	common.RespondEmbed(s, i, statusEmbed(info), true)
	return nil
}

// HandleInteraction handles chip and side buttons on a board
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := f.handleButton(s, i); err != nil {
		common.HandleError(s, i, err, false)
	}
}

func (f *Feature) handleButton(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	id, err := common.ParseCustomID(i.MessageComponentData().CustomID)
	if err != nil {
		return common.NewSystemError(err, "bad session button")
	}
	actor, err := common.ActorFrom(i)
	if err != nil {
		return err
	}
	round, err := id.IntArg(0)
	if err != nil {
		return common.NewSystemError(err, "bad session button round")
	}

	handle, ok := f.registry.Get(actor.ChannelID)
	if !ok {
		return common.FromDomainError(game.ErrGameExpired, "button for a stopped session")
	}

	ctx := context.Background()
	switch id.Action {
	case actionAmount:
		amount, err := id.IntArg(1)
		if err != nil {
			return common.NewSystemError(err, "bad session button amount")
		}
		if err := handle.SelectAmount(ctx, actor.UserID, int(round), amount); err != nil {
			return common.FromDomainError(err, "failed to select amount")
		}
		common.RespondEphemeral(s, i, fmt.Sprintf("🪙 Chip **%s** selected. Now pick a side.", common.FormatChip(amount)))
		return nil

	case actionSide:
		raw, err := id.Arg(1)
		if err != nil {
			return common.NewSystemError(err, "bad session button side")
		}
		side, err := handle.Rules().ParseSide(raw)
		if err != nil {
			return common.FromDomainError(err, "bad session side")
		}
		receipt, err := handle.PlaceBet(ctx, actor.UserID, int(round), side, 0)
		if err != nil {
			botErr := common.FromDomainError(err, "failed to place bet")
			if errors.Is(err, game.ErrInsufficientBalance) {
				botErr.Context = log.Fields{"side": side, "round": round}
			}
			return botErr
		}
		common.RespondEphemeral(s, i, betConfirmation(receipt))
		return nil

	default:
		return common.NewSystemError(fmt.Errorf("unknown action %q", id.Action), "bad session button")
	}
}
