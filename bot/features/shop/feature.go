// Package shop sells rings and shows inventories.
package shop

import (
	"dicehall/application"
	"dicehall/bot/common"
	"dicehall/domain/interfaces"
	"dicehall/domain/services"

	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	uowFactory      application.UnitOfWorkFactory
	startingBalance int64
}

func New(uowFactory application.UnitOfWorkFactory, startingBalance int64) *Feature {
	return &Feature{
		uowFactory:      uowFactory,
		startingBalance: startingBalance,
	}
}

// HandleCommand routes /ring and /inventory
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.ApplicationCommandData().Name == "inventory" {
		f.handleInventory(s, i)
		return
	}

	sub, options := common.SubcommandOptions(i)
	switch sub {
	case "buy":
		f.handleBuy(s, i, stringOption(options, "name"))
	case "add":
		var price int64
		if opt := options["price"]; opt != nil {
			price = opt.IntValue()
		}
		f.handleAdd(s, i, stringOption(options, "name"), stringOption(options, "emoji"), price)
	case "remove":
		f.handleRemove(s, i, stringOption(options, "name"))
	default:
		f.handleList(s, i)
	}
}

func (f *Feature) shopService(uow application.UnitOfWork) interfaces.ShopService {
	return services.NewShopService(
		uow.RingRepository(),
		uow.InventoryRepository(),
		uow.UserRepository(),
		uow.BalanceHistoryRepository(),
		uow.EventBus(),
		f.startingBalance,
	)
}

func stringOption(options map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt := options[name]; opt != nil {
		return opt.StringValue()
	}
	return ""
}
