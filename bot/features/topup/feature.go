// Package topup sells balance for bank transfers: it hands out VietQR codes,
// lets members confirm or cancel them and announces paid topups.
package topup

import (
	"dicehall/application"
	"dicehall/bot/common"
	"dicehall/config"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/bwmarrin/discordgo"
)

// BankAccount is where members send their transfers
type BankAccount struct {
	Bank    string
	Account string
	Name    string
}

// AccountFromConfig reads the VietQR settings
func AccountFromConfig(cfg *config.Config) BankAccount {
	return BankAccount{
		Bank:    cfg.VietQRBank,
		Account: cfg.VietQRAccount,
		Name:    cfg.VietQRName,
	}
}

// Enabled reports whether every bank detail is set
func (a BankAccount) Enabled() bool {
	return a.Bank != "" && a.Account != "" && a.Name != ""
}

type Feature struct {
	uowFactory application.UnitOfWorkFactory
	account    BankAccount
	roller     dice.Roller
}

func New(uowFactory application.UnitOfWorkFactory, account BankAccount, roller dice.Roller) *Feature {
	return &Feature{
		uowFactory: uowFactory,
		account:    account,
		roller:     roller,
	}
}

// HandleCommand routes /topup subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !f.account.Enabled() {
		common.RespondWithError(s, i, "Topups are not available on this bot.")
		return
	}

	sub, options := common.SubcommandOptions(i)
	switch sub {
	case "confirm", "cancel":
		code := ""
		if opt := options["code"]; opt != nil {
			code = opt.StringValue()
		}
		if sub == "confirm" {
			f.handleConfirm(s, i, code, false)
		} else {
			f.handleCancel(s, i, code, false)
		}
	default:
		f.handleRequest(s, i)
	}
}

// HandleInteraction handles the confirm and cancel buttons under a topup
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	id, err := common.ParseCustomID(i.MessageComponentData().CustomID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "bad topup button"), false)
		return
	}
	code, err := id.Arg(0)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "bad topup button code"), false)
		return
	}

	switch id.Action {
	case actionConfirm:
		f.handleConfirm(s, i, code, true)
	case actionCancel:
		f.handleCancel(s, i, code, true)
	default:
		common.RespondWithError(s, i, "Unknown topup action.")
	}
}
