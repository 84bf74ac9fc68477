package admin

import (
	"context"
	"fmt"

	"dicehall/application"
	"dicehall/bot/common"
	"dicehall/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// run executes fn in a guild unit of work and commits on success
func (f *Feature) run(s *discordgo.Session, i *discordgo.InteractionCreate, fn func(ctx context.Context, actor *common.Actor, uow application.UnitOfWork) error) bool {
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

func (f *Feature) handleAdjust(s *discordgo.Session, i *discordgo.InteractionCreate, action string, target *discordgo.User, amount int64) {
	if target == nil {
		common.RespondWithError(s, i, "Pick a member.")
		return
	}
	targetID, err := common.ParseUserID(target.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", target.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var message string
	ok := f.run(s, i, func(ctx context.Context, actor *common.Actor, uow application.UnitOfWork) error {
		svc := f.economyService(uow)

		var (
			adj *interfaces.BalanceAdjustment
			err error
		)
		switch action {
		case "addmoney":
			adj, err = svc.AddMoney(ctx, targetID, target.Username, amount)
		case "setmoney":
			adj, err = svc.SetMoney(ctx, targetID, target.Username, amount)
		default:
			adj, err = svc.ResetMoney(ctx, targetID, target.Username)
		}
		if err != nil {
			return common.FromDomainError(err, "failed to adjust balance")
		}
		message = adjustmentMessage(action, adj)

		log.WithFields(log.Fields{
			"guildID": actor.GuildID,
			"adminID": actor.UserID,
			"userID":  targetID,
			"action":  action,
			"amount":  amount,
		}).Info("Admin balance adjustment")
		return nil
	})
	if ok {
		common.Respond(s, i, &discordgo.InteractionResponseData{Content: message})
	}
}

func (f *Feature) handleResetAll(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var count int64
	ok := f.run(s, i, func(ctx context.Context, _ *common.Actor, uow application.UnitOfWork) error {
		var err error
		count, err = f.economyService(uow).ResetAll(ctx)
		if err != nil {
			return common.NewSystemError(err, "failed to reset balances")
		}
		return nil
	})
	if ok {
		common.Respond(s, i, &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("♻️ Reset %d balances to %s.", count, common.FormatCoins(f.startingBalance)),
		})
	}
}

func (f *Feature) handleRevenue(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var embed *discordgo.MessageEmbed
	ok := f.run(s, i, func(ctx context.Context, _ *common.Actor, uow application.UnitOfWork) error {
		stats, err := f.topupService(uow).RevenueStats(ctx)
		if err != nil {
			return common.NewSystemError(err, "failed to load revenue")
		}
		embed = revenueEmbed(stats)
		return nil
	})
	if ok {
		common.RespondEmbed(s, i, embed, true)
	}
}

func (f *Feature) handleResetRevenue(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var deleted int64
	ok := f.run(s, i, func(ctx context.Context, _ *common.Actor, uow application.UnitOfWork) error {
		var err error
		deleted, err = f.topupService(uow).ResetRevenue(ctx)
		if err != nil {
			return common.NewSystemError(err, "failed to reset revenue")
		}
		return nil
	})
	if ok {
		common.RespondEphemeral(s, i, fmt.Sprintf("🧹 Cleared %d paid topups from the revenue report.", deleted))
	}
}
