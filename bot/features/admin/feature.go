// Package admin holds the balance and revenue tools for server administrators.
package admin

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

// HandleCommand routes /admin subcommands. Every subcommand needs administrator
// rights, resetall needs the developer account.
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.IsUserAdmin(i) {
		common.RespondWithError(s, i, "You do not have permission to use this command.")
		return
	}

	sub, options := common.SubcommandOptions(i)
	switch sub {
	case "addmoney", "setmoney", "resetmoney":
		var target *discordgo.User
		if opt := options["user"]; opt != nil {
			target = opt.UserValue(s)
		}
		var amount int64
		if opt := options["amount"]; opt != nil {
			amount = opt.IntValue()
		}
		f.handleAdjust(s, i, sub, target, amount)
	case "resetall":
		if !common.IsDeveloper(i) {
			common.RespondWithError(s, i, "Only the bot developer can reset every balance.")
			return
		}
		f.handleResetAll(s, i)
	case "revenue":
		f.handleRevenue(s, i)
	case "resetrevenue":
		f.handleResetRevenue(s, i)
	default:
		common.RespondWithError(s, i, "Unknown admin command.")
	}
}

func (f *Feature) economyService(uow application.UnitOfWork) interfaces.EconomyService {
	return services.NewEconomyService(
		uow.UserRepository(),
		uow.BalanceHistoryRepository(),
		uow.EventBus(),
		f.startingBalance,
	)
}

func (f *Feature) topupService(uow application.UnitOfWork) interfaces.TopupService {
	return services.NewTopupService(
		uow.TopupRepository(),
		uow.BankTransactionRepository(),
		uow.UserRepository(),
		uow.BalanceHistoryRepository(),
		uow.EventBus(),
		nil,
	)
}
