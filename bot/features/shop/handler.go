package shop

import (
	"context"
	"fmt"

	"dicehall/application"
	"dicehall/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// withShop runs fn inside a guild unit of work and commits when it succeeds
func (f *Feature) withShop(s *discordgo.Session, i *discordgo.InteractionCreate, fn func(ctx context.Context, actor *common.Actor, uow application.UnitOfWork) error) bool {
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

func (f *Feature) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var embed *discordgo.MessageEmbed
	ok := f.withShop(s, i, func(ctx context.Context, _ *common.Actor, uow application.UnitOfWork) error {
		rings, err := f.shopService(uow).ListRings(ctx)
		if err != nil {
			return common.NewSystemError(err, "failed to list rings")
		}
		embed = catalogEmbed(rings)
		return nil
	})
	if ok {
		common.RespondEmbed(s, i, embed, false)
	}
}

func (f *Feature) handleBuy(s *discordgo.Session, i *discordgo.InteractionCreate, name string) {
	var message string
	ok := f.withShop(s, i, func(ctx context.Context, actor *common.Actor, uow application.UnitOfWork) error {
		result, err := f.shopService(uow).BuyRing(ctx, actor.UserID, actor.Username, name)
		if err != nil {
			return common.FromDomainError(err, "failed to buy ring")
		}
		message = fmt.Sprintf("%s %s bought **%s** for %s. Balance: **%s**",
			ringEmoji(result.Item.RingEmoji), actor.Name, result.Item.RingName,
			common.FormatCoins(result.Item.RingPrice), common.FormatCoins(result.NewBalance))
		return nil
	})
	if ok {
		common.Respond(s, i, &discordgo.InteractionResponseData{Content: message})
	}
}

func (f *Feature) handleAdd(s *discordgo.Session, i *discordgo.InteractionCreate, name, emoji string, price int64) {
	if !common.IsUserAdmin(i) {
		common.RespondWithError(s, i, "Only administrators can stock the shop.")
		return
	}

	var message string
	ok := f.withShop(s, i, func(ctx context.Context, actor *common.Actor, uow application.UnitOfWork) error {
		ring, err := f.shopService(uow).AddRing(ctx, name, emoji, price)
		if err != nil {
			return common.FromDomainError(err, "failed to add ring")
		}
		log.WithFields(log.Fields{
			"guildID": actor.GuildID,
			"ring":    ring.Name,
			"price":   ring.Price,
		}).Info("Ring added to shop")
		message = fmt.Sprintf("✅ Added %s **%s** at %s.", ringEmoji(ring.Emoji), ring.Name, common.FormatCoins(ring.Price))
		return nil
	})
	if ok {
		common.RespondEphemeral(s, i, message)
	}
}

func (f *Feature) handleRemove(s *discordgo.Session, i *discordgo.InteractionCreate, name string) {
	if !common.IsUserAdmin(i) {
		common.RespondWithError(s, i, "Only administrators can change the shop.")
		return
	}

	ok := f.withShop(s, i, func(ctx context.Context, _ *common.Actor, uow application.UnitOfWork) error {
		if err := f.shopService(uow).RemoveRing(ctx, name); err != nil {
			return common.FromDomainError(err, "failed to remove ring")
		}
		return nil
	})
	if ok {
		common.RespondEphemeral(s, i, fmt.Sprintf("🗑️ Removed **%s** from the shop. Rings already bought are kept.", name))
	}
}

func (f *Feature) handleInventory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var embed *discordgo.MessageEmbed
	ok := f.withShop(s, i, func(ctx context.Context, actor *common.Actor, uow application.UnitOfWork) error {
		items, err := f.shopService(uow).Inventory(ctx, actor.UserID)
		if err != nil {
			return common.NewSystemError(err, "failed to load inventory")
		}
		embed = inventoryEmbed(actor.Name, items)
		return nil
	})
	if ok {
		common.RespondEmbed(s, i, embed, true)
	}
}
