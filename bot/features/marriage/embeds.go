package marriage

import (
	"fmt"
	"time"

	"dicehall/bot/common"
	"dicehall/domain/entities"
	"dicehall/domain/services"

	"github.com/bwmarrin/discordgo"
)

func tierLabel(tier entities.LoveTier) string {
	switch tier {
	case entities.LoveTierEternal:
		return "💞 Eternal love"
	case entities.LoveTierBlissful:
		return "💖 Blissful"
	case entities.LoveTierWarm:
		return "💗 Warm"
	case entities.LoveTierOrdinary:
		return "💛 Ordinary"
	case entities.LoveTierTroubled:
		return "💔 Troubled"
	default:
		return "🖤 On the edge"
	}
}

func ringText(emoji, name string) string {
	if emoji == "" {
		emoji = "💍"
	}
	return fmt.Sprintf("%s **%s**", emoji, name)
}

func proposalMessage(proposal *entities.Proposal) *discordgo.InteractionResponseData {
	target := common.FormatUserID(proposal.TargetID)
	return &discordgo.InteractionResponseData{
		Content: common.GetUserMention(proposal.TargetID),
		Embeds: []*discordgo.MessageEmbed{{
			Title: "💌 A proposal!",
			Description: fmt.Sprintf("%s kneels and offers %s to %s.\nWill you marry them?",
				common.GetUserMention(proposal.ProposerID), ringText(proposal.RingEmoji, proposal.RingName), common.GetUserMention(proposal.TargetID)),
			Color: common.ColorLove,
			Footer: &discordgo.MessageEmbedFooter{
				Text: fmt.Sprintf("The proposal lapses in %s", common.FormatDuration(services.ProposalTTL)),
			},
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Yes",
					Style:    discordgo.SuccessButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "💍"},
					CustomID: common.BuildCustomID(common.PrefixMarriage, actionAccept, target),
				},
				discordgo.Button{
					Label:    "No",
					Style:    discordgo.SecondaryButton,
					CustomID: common.BuildCustomID(common.PrefixMarriage, actionDeny, target),
				},
			}},
		},
	}
}

func weddingEmbed(marriage *entities.Marriage) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "💒 Just married!",
		Description: fmt.Sprintf("%s and %s are now married with %s.",
			common.GetUserMention(marriage.User1ID), common.GetUserMention(marriage.User2ID), ringText(marriage.RingEmoji, marriage.RingName)),
		Color: common.ColorLove,
	}
}

func statusEmbed(marriage *entities.Marriage, userID int64, now time.Time) *discordgo.MessageEmbed {
	days := int(now.Sub(marriage.MarriedAt).Hours() / 24)
	return &discordgo.MessageEmbed{
		Title: "💑 Marriage",
		Color: common.ColorLove,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Partner", Value: common.GetUserMention(marriage.PartnerOf(userID)), Inline: true},
			{Name: "Ring", Value: ringText(marriage.RingEmoji, marriage.RingName), Inline: true},
			{Name: "Together", Value: fmt.Sprintf("%d days", days), Inline: true},
			{Name: "Love points", Value: fmt.Sprintf("%d", marriage.LovePoints), Inline: true},
			{Name: "Tier", Value: tierLabel(marriage.Tier()), Inline: true},
		},
	}
}

func affinityMessage(love bool, userID int64, marriage *entities.Marriage, delta int64) string {
	partner := common.GetUserMention(marriage.PartnerOf(userID))
	if love {
		return fmt.Sprintf("💕 %s showers %s with love: **+%d** points (%d, %s)",
			common.GetUserMention(userID), partner, delta, marriage.LovePoints, tierLabel(marriage.Tier()))
	}
	return fmt.Sprintf("😤 %s picks a fight with %s: **%d** points (%d, %s)",
		common.GetUserMention(userID), partner, delta, marriage.LovePoints, tierLabel(marriage.Tier()))
}
