// Package marriage lets members propose with rings from their inventory,
// answer proposals and tend their marriage with love and hate.
package marriage

import (
	"dicehall/application"
	"dicehall/bot/common"
	"dicehall/domain/interfaces"
	"dicehall/domain/services"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/bwmarrin/discordgo"
)

const (
	actionAccept = "accept"
	actionDeny   = "deny"
)

type Feature struct {
	uowFactory application.UnitOfWorkFactory
	proposals  interfaces.ProposalStore
	cooldowns  interfaces.CooldownStore
	roller     dice.Roller
}

func New(uowFactory application.UnitOfWorkFactory, proposals interfaces.ProposalStore, cooldowns interfaces.CooldownStore, roller dice.Roller) *Feature {
	return &Feature{
		uowFactory: uowFactory,
		proposals:  proposals,
		cooldowns:  cooldowns,
		roller:     roller,
	}
}

func (f *Feature) marriageService(guildID int64, uow application.UnitOfWork) interfaces.MarriageService {
	return services.NewMarriageService(
		guildID,
		uow.MarriageRepository(),
		uow.InventoryRepository(),
		f.proposals,
		f.cooldowns,
		uow.EventBus(),
		f.roller,
	)
}

// HandleCommand routes /marry subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub, options := common.SubcommandOptions(i)
	switch sub {
	case "propose":
		var target *discordgo.User
		if opt := options["user"]; opt != nil {
			target = opt.UserValue(s)
		}
		ring := int64(1)
		if opt := options["ring"]; opt != nil {
			ring = opt.IntValue()
		}
		f.handlePropose(s, i, target, int(ring))
	case "accept":
		f.handleRespond(s, i, true, false)
	case "deny":
		f.handleRespond(s, i, false, false)
	case "divorce":
		f.handleDivorce(s, i)
	case "love":
		f.handleAffinity(s, i, true)
	case "hate":
		f.handleAffinity(s, i, false)
	default:
		f.handleStatus(s, i)
	}
}

// HandleInteraction handles the accept and deny buttons under a proposal
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	id, err := common.ParseCustomID(i.MessageComponentData().CustomID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "bad marriage button"), false)
		return
	}
	targetID, err := id.IntArg(0)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "bad marriage button target"), false)
		return
	}
	if common.InteractionUserID(i) != common.FormatUserID(targetID) {
		common.RespondWithError(s, i, "This proposal is not addressed to you.")
		return
	}

	switch id.Action {
	case actionAccept:
		f.handleRespond(s, i, true, true)
	case actionDeny:
		f.handleRespond(s, i, false, true)
	default:
		common.RespondWithError(s, i, "Unknown marriage action.")
	}
}
