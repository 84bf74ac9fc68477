package topup

import (
	"fmt"
	"net/url"
	"time"

	"dicehall/bot/common"
	"dicehall/domain/entities"
	"dicehall/domain/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	actionConfirm = "confirm"
	actionCancel  = "cancel"

	vietQRBaseURL = "https://img.vietqr.io/image/"
)

// QRImageURL builds the VietQR image that pre-fills the transfer with the code
func (a BankAccount) QRImageURL(code string) string {
	return fmt.Sprintf("%s%s-%s-compact2.png?addInfo=%s&accountName=%s",
		vietQRBaseURL,
		url.PathEscape(a.Bank),
		url.PathEscape(a.Account),
		url.QueryEscape(code),
		url.QueryEscape(a.Name),
	)
}

func requestEmbed(account BankAccount, topup *entities.Topup, reused bool, now time.Time) *discordgo.MessageEmbed {
	description := "Scan the QR code and transfer the amount you want to add.\nPress **I have paid** once the transfer is done."
	if reused {
		description = "You already have an open topup. Scan the QR code and transfer the amount you want to add."
	}

	return &discordgo.MessageEmbed{
		Title:       "💳 Topup",
		Description: description,
		Color:       common.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Code", Value: fmt.Sprintf("`%s`", topup.Code), Inline: true},
			{Name: "Bank", Value: account.Bank, Inline: true},
			{Name: "Account", Value: account.Account, Inline: true},
			{Name: "Holder", Value: account.Name, Inline: true},
			{Name: "Expires in", Value: common.FormatDuration(topup.ExpiresAt.Sub(now)), Inline: true},
		},
		Image:  &discordgo.MessageEmbedImage{URL: account.QRImageURL(topup.Code)},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("⚠️ The transfer note must contain %s", topup.Code)},
	}
}

func requestComponents(code string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "I have paid",
				Style:    discordgo.SuccessButton,
				Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
				CustomID: common.BuildCustomID(common.PrefixTopup, actionConfirm, code),
			},
			discordgo.Button{
				Label:    "Cancel",
				Style:    discordgo.DangerButton,
				Emoji:    &discordgo.ComponentEmoji{Name: "❌"},
				CustomID: common.BuildCustomID(common.PrefixTopup, actionCancel, code),
			},
		}},
	}
}

// PaidEmbed announces a credited topup
func PaidEmbed(code string, amount, newBalance int64) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "✅ Topup received",
		Color: common.ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Amount", Value: utils.FormatAmount(amount), Inline: true},
			{Name: "Code", Value: code, Inline: true},
			{Name: "New balance", Value: common.FormatBalance(newBalance), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "VietQR"},
	}
}
