package marriage

import (
	"context"
	"fmt"
	"time"

	"dicehall/application"
	"dicehall/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// withMarriage runs fn inside a guild unit of work and commits when it succeeds
func (f *Feature) withMarriage(s *discordgo.Session, i *discordgo.InteractionCreate, fn func(ctx context.Context, actor *common.Actor, uow application.UnitOfWork) error) bool {
	ctx := context.Background()

	actor, err := common.ActorFrom(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return false
	}

	uow := f.uowFactory.CreateForGuild(actor.GuildID)
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Error beginning transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return false
	}
	defer uow.Rollback()

	if err := fn(ctx, &actor, uow); err != nil {
		common.HandleError(s, i, err, false)
		return false
	}

	if err := uow.Commit(); err != nil {
		log.Errorf("Error committing transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return false
	}
	return true
}

func (f *Feature) handlePropose(s *discordgo.Session, i *discordgo.InteractionCreate, target *discordgo.User, ring int) {
	if target == nil {
		common.RespondWithError(s, i, "Pick someone to propose to.")
		return
	}
	if target.Bot {
		common.RespondWithError(s, i, "Bots cannot get married.")
		return
	}
	targetID, err := common.ParseUserID(target.ID)
	if err != nil {
		log.Errorf("Error parsing target Discord ID %s: %v", target.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var data *discordgo.InteractionResponseData
	ok := f.withMarriage(s, i, func(ctx context.Context, actor *common.Actor, uow application.UnitOfWork) error {
		proposal, err := f.marriageService(actor.GuildID, uow).Propose(ctx, actor.UserID, targetID, ring)
		if err != nil {
			return common.FromDomainError(err, "failed to propose")
		}
		data = proposalMessage(proposal)
		return nil
	})
	if ok {
		common.Respond(s, i, data)
	}
}

// handleRespond answers the caller's pending proposal. fromButton rewrites the
// proposal message instead of posting a new one.
func (f *Feature) handleRespond(s *discordgo.Session, i *discordgo.InteractionCreate, accept, fromButton bool) {
	var data *discordgo.InteractionResponseData
	ok := f.withMarriage(s, i, func(ctx context.Context, actor *common.Actor, uow application.UnitOfWork) error {
		marriage, proposal, err := f.marriageService(actor.GuildID, uow).Respond(ctx, actor.UserID, accept)
		if err != nil {
			return common.FromDomainError(err, "failed to answer proposal")
		}
		if marriage != nil {
			data = &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{weddingEmbed(marriage)}}
		} else {
			data = &discordgo.InteractionResponseData{
				Content: fmt.Sprintf("💔 %s turned down %s's proposal.", common.GetUserMention(actor.UserID), common.GetUserMention(proposal.ProposerID)),
			}
		}
		return nil
	})
	if !ok {
		return
	}
	if fromButton {
		data.Components = []discordgo.MessageComponent{}
		if data.Embeds == nil {
			data.Embeds = []*discordgo.MessageEmbed{}
		}
		common.UpdateMessage(s, i, data)
		return
	}
	common.Respond(s, i, data)
}

func (f *Feature) handleDivorce(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var message string
	ok := f.withMarriage(s, i, func(ctx context.Context, actor *common.Actor, uow application.UnitOfWork) error {
		marriage, err := f.marriageService(actor.GuildID, uow).Divorce(ctx, actor.UserID)
		if err != nil {
			return common.FromDomainError(err, "failed to divorce")
		}
		message = fmt.Sprintf("📜 %s and %s are divorced.", common.GetUserMention(actor.UserID), common.GetUserMention(marriage.PartnerOf(actor.UserID)))
		return nil
	})
	if ok {
		common.Respond(s, i, &discordgo.InteractionResponseData{Content: message})
	}
}

func (f *Feature) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var embed *discordgo.MessageEmbed
	ok := f.withMarriage(s, i, func(ctx context.Context, actor *common.Actor, uow application.UnitOfWork) error {
		marriage, err := f.marriageService(actor.GuildID, uow).Status(ctx, actor.UserID)
		if err != nil {
			return common.FromDomainError(err, "failed to load marriage")
		}
		embed = statusEmbed(marriage, actor.UserID, time.Now())
		return nil
	})
	if ok {
		common.RespondEmbed(s, i, embed, false)
	}
}

func (f *Feature) handleAffinity(s *discordgo.Session, i *discordgo.InteractionCreate, love bool) {
	var message string
	ok := f.withMarriage(s, i, func(ctx context.Context, actor *common.Actor, uow application.UnitOfWork) error {
		svc := f.marriageService(actor.GuildID, uow)
		apply := svc.Hate
		if love {
			apply = svc.Love
		}
		result, err := apply(ctx, actor.UserID)
		if err != nil {
			return common.FromDomainError(err, "failed to change love points")
		}
		message = affinityMessage(love, actor.UserID, result.Marriage, result.Delta)
		return nil
	})
	if ok {
		common.Respond(s, i, &discordgo.InteractionResponseData{Content: message})
	}
}
