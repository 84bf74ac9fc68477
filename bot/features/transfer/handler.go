package transfer

import (
	"context"

	"dicehall/bot/common"
	"dicehall/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleGive(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	actor, err := common.ActorFrom(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	// Extract amount and recipient
	var amount int64
	var recipient *discordgo.User
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "amount":
			amount = opt.IntValue()
		case "user":
			recipient = opt.UserValue(s)
		}
	}

	if recipient == nil {
		common.RespondWithError(s, i, "Invalid recipient user.")
		return
	}
	if recipient.Bot {
		common.RespondWithError(s, i, "You cannot send coins to a bot.")
		return
	}
	if amount <= 0 {
		common.RespondWithError(s, i, "Amount must be positive.")
		return
	}

	toID, err := common.ParseUserID(recipient.ID)
	if err != nil {
		log.Errorf("Error parsing recipient Discord ID %s: %v", recipient.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	// Create guild-scoped unit of work
	uow := f.uowFactory.CreateForGuild(actor.GuildID)
	if err := uow.Begin(ctx); err != nil {
		log.Errorf("Error beginning transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	defer uow.Rollback()

	economyService := services.NewEconomyService(
		uow.UserRepository(),
		uow.BalanceHistoryRepository(),
		uow.EventBus(),
		f.startingBalance,
	)

	result, err := economyService.Transfer(ctx, actor.UserID, toID, amount, actor.Username, recipient.Username)
	if err != nil {
		common.HandleError(s, i, common.FromDomainError(err, "transfer failed"), false)
		return
	}

	if err := uow.Commit(); err != nil {
		log.Errorf("Error committing transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	log.WithFields(log.Fields{
		"guildID": actor.GuildID,
		"from":    actor.UserID,
		"to":      toID,
		"amount":  amount,
	}).Info("Transfer completed")

	common.Respond(s, i, &discordgo.InteractionResponseData{
		Content: common.FormatTransferResult(result.Amount, actor.UserID, toID),
	})
}
