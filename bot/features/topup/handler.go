package topup

import (
	"context"
	"errors"
	"time"

	"dicehall/application"
	"dicehall/bot/common"
	"dicehall/domain/interfaces"
	"dicehall/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) topupService(uow application.UnitOfWork) interfaces.TopupService {
	return services.NewTopupService(
		uow.TopupRepository(),
		uow.BankTransactionRepository(),
		uow.UserRepository(),
		uow.BalanceHistoryRepository(),
		uow.EventBus(),
		f.roller,
	)
}

func (f *Feature) handleRequest(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	actor, err := common.ActorFrom(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	uow := f.uowFactory.CreateForGuild(actor.GuildID)
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Error beginning transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	defer uow.Rollback()

	request, err := f.topupService(uow).RequestTopup(ctx, actor.UserID, actor.ChannelID, actor.Username)
	if err != nil {
		common.HandleError(s, i, common.FromDomainError(err, "failed to request topup"), false)
		return
	}

	if err := uow.Commit(); err != nil {
		log.Errorf("Error committing transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	common.Respond(s, i, &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{requestEmbed(f.account, request.Topup, request.Reused, time.Now())},
		Components: requestComponents(request.Topup.Code),
		Flags:      discordgo.MessageFlagsEphemeral,
	})
}

// handleConfirm settles a topup whose transfer already reached the bank feed.
// fromButton replaces the topup message instead of replying.
func (f *Feature) handleConfirm(s *discordgo.Session, i *discordgo.InteractionCreate, code string, fromButton bool) {
	ctx := context.Background()

	actor, err := common.ActorFrom(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	uow := f.uowFactory.CreateForGuild(actor.GuildID)
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Error beginning transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	defer uow.Rollback()

	result, err := f.topupService(uow).ConfirmTopup(ctx, actor.UserID, code)
	if errors.Is(err, services.ErrTopupExpired) {
		// keep the expiry the service just recorded
		if commitErr := uow.Commit(); commitErr != nil {
			log.Errorf("Error committing transaction: %v", commitErr)
		}
	}
	if err != nil {
		common.HandleError(s, i, common.FromDomainError(err, "failed to confirm topup"), false)
		return
	}

	if err := uow.Commit(); err != nil {
		log.Errorf("Error committing transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	log.WithFields(log.Fields{
		"guildID": actor.GuildID,
		"userID":  actor.UserID,
		"code":    result.Topup.Code,
		"amount":  result.Amount,
	}).Info("Topup confirmed by member")

	data := &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{PaidEmbed(result.Topup.Code, result.Amount, result.NewBalance)},
		Components: []discordgo.MessageComponent{},
		Flags:      discordgo.MessageFlagsEphemeral,
	}
	if fromButton {
		common.UpdateMessage(s, i, data)
		return
	}
	common.Respond(s, i, data)
}

func (f *Feature) handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate, code string, fromButton bool) {
	ctx := context.Background()

	actor, err := common.ActorFrom(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	uow := f.uowFactory.CreateForGuild(actor.GuildID)
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Error beginning transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	defer uow.Rollback()

	if err := f.topupService(uow).CancelTopup(ctx, actor.UserID, code); err != nil {
		common.HandleError(s, i, common.FromDomainError(err, "failed to cancel topup"), false)
		return
	}

	if err := uow.Commit(); err != nil {
		log.Errorf("Error committing transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	data := &discordgo.InteractionResponseData{
		Content:    "🗑️ Topup cancelled.",
		Embeds:     []*discordgo.MessageEmbed{},
		Components: []discordgo.MessageComponent{},
		Flags:      discordgo.MessageFlagsEphemeral,
	}
	if fromButton {
		common.UpdateMessage(s, i, data)
		return
	}
	common.Respond(s, i, data)
}
