package balance

import (
	"context"
	"fmt"
	"strings"

	"dicehall/bot/common"
	"dicehall/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	actor, err := common.ActorFrom(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	// an optional user option looks at someone else's balance
	targetID, targetName, self := actor.UserID, actor.Name, true
	if opt := common.OptionMap(i.ApplicationCommandData().Options)["user"]; opt != nil {
		user := opt.UserValue(s)
		if user != nil && user.ID != common.InteractionUserID(i) {
			if user.Bot {
				common.RespondWithError(s, i, "Bots do not have a balance.")
				return
			}
			id, err := common.ParseUserID(user.ID)
			if err != nil {
				log.Errorf("Error parsing Discord ID %s: %v", user.ID, err)
				common.RespondWithError(s, i, "Unable to process request. Please try again.")
				return
			}
			targetID, targetName, self = id, common.GetDisplayName(s, i.GuildID, user.ID), false
		}
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

	user, err := economyService.GetOrCreateUser(ctx, targetID, targetName)
	if err != nil {
		log.Errorf("Error getting user %d: %v", targetID, err)
		common.RespondWithError(s, i, "Unable to retrieve balance. Please try again.")
		return
	}

	if err := uow.Commit(); err != nil {
		log.Errorf("Error committing transaction: %v", err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	message := fmt.Sprintf("💰 %s, your balance: **%s**", actor.Name, common.FormatCoins(user.Balance))
	if !self {
		message = fmt.Sprintf("💰 %s has **%s**", targetName, common.FormatCoins(user.Balance))
	}
	common.RespondEphemeral(s, i, message)
}

var medals = []string{"🥇", "🥈", "🥉"}

func (f *Feature) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
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

	economyService := services.NewEconomyService(
		uow.UserRepository(),
		uow.BalanceHistoryRepository(),
		uow.EventBus(),
		f.startingBalance,
	)

	entries, err := economyService.Leaderboard(ctx, services.DefaultLeaderboardSize)
	if err != nil {
		log.Errorf("Error loading leaderboard for guild %d: %v", actor.GuildID, err)
		common.RespondWithError(s, i, "Unable to load the leaderboard. Please try again.")
		return
	}

	if len(entries) == 0 {
		common.RespondEphemeral(s, i, "Nobody has played yet.")
		return
	}

	var b strings.Builder
	for idx, entry := range entries {
		rank := fmt.Sprintf("`#%d`", entry.Rank)
		if idx < len(medals) {
			rank = medals[idx]
		}
		fmt.Fprintf(&b, "%s %s · **%s**\n", rank, common.GetUserMention(entry.DiscordID), common.FormatBalance(entry.Balance))
	}

	common.RespondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "🏆 Richest players",
		Description: b.String(),
		Color:       common.ColorGold,
	}, false)
}
