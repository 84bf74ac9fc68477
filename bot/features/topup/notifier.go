package topup

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"dicehall/bot/common"
	"dicehall/domain/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Messenger is the part of the Discord session used to announce paid topups
type Messenger interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// PaidNotifier tells the member their transfer arrived, in the topup's
// channel and by direct message
type PaidNotifier struct {
	messenger Messenger
}

func NewPaidNotifier(messenger Messenger) *PaidNotifier {
	return &PaidNotifier{messenger: messenger}
}

// HandleTopupPaid is registered as a local handler for topup_paid events
func (n *PaidNotifier) HandleTopupPaid(ctx context.Context, event events.Event) error {
	paid, ok := event.(events.TopupPaidEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	embed := PaidEmbed(paid.Code, paid.Amount, paid.NewBalance)
	userID := common.FormatUserID(paid.UserID)

	var errs []error
	if paid.ChannelID != 0 {
		_, err := n.messenger.ChannelMessageSendComplex(strconv.FormatInt(paid.ChannelID, 10), &discordgo.MessageSend{
			Content: common.GetUserMention(paid.UserID),
			Embeds:  []*discordgo.MessageEmbed{embed},
		}, discordgo.WithContext(ctx))
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to notify channel %d: %w", paid.ChannelID, err))
		}
	}

	// members with closed DMs still get the channel notice
	dm, err := n.messenger.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		log.WithError(err).WithField("userID", paid.UserID).Debug("Cannot open DM for topup notice")
		return errors.Join(errs...)
	}
	if _, err := n.messenger.ChannelMessageSendComplex(dm.ID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx)); err != nil {
		log.WithError(err).WithField("userID", paid.UserID).Debug("Failed to DM topup notice")
	}

	log.WithFields(log.Fields{
		"guildID": paid.GuildID,
		"userID":  paid.UserID,
		"code":    paid.Code,
		"amount":  paid.Amount,
	}).Info("Topup paid notice sent")
	return errors.Join(errs...)
}
