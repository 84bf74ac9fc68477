package sessions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"dicehall/bot/render"
	"dicehall/domain/entities"
	"dicehall/domain/session"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// ChannelMessenger is the part of the Discord session the presenter writes through
type ChannelMessenger interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Presenter draws session boards and results into Discord channels
type Presenter struct {
	messenger     ChannelMessenger
	renderer      *render.Renderer
	roundDuration int
}

var _ session.Presenter = (*Presenter)(nil)

// NewPresenter creates a presenter that posts through messenger
func NewPresenter(messenger ChannelMessenger, renderer *render.Renderer, timing session.Timing) *Presenter {
	return &Presenter{
		messenger:     messenger,
		renderer:      renderer,
		roundDuration: timing.RoundDuration,
	}
}

// ShowBoard edits the round's board in place, or posts it when the round has
// no message yet or the old one was deleted
func (p *Presenter) ShowBoard(ctx context.Context, view session.BoardView) (string, error) {
	image, err := p.renderer.Board(view, p.roundDuration)
	if err != nil {
		return "", fmt.Errorf("failed to render board: %w", err)
	}

	channelID := strconv.FormatInt(view.ChannelID, 10)
	embed := boardEmbed(view)
	components := BoardComponents(view)

	if view.MessageRef != "" {
		edit := discordgo.NewMessageEdit(channelID, view.MessageRef)
		edit.Embeds = &[]*discordgo.MessageEmbed{embed}
		edit.Components = &components
		edit.Files = []*discordgo.File{pngFile(boardImageName, image)}
		edit.Attachments = &[]*discordgo.MessageAttachment{}

		msg, err := p.messenger.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
		if err == nil {
			return msg.ID, nil
		}
		if !isNotFound(err) {
			return "", fmt.Errorf("failed to edit board: %w", err)
		}
		log.WithFields(log.Fields{
			"channelID": view.ChannelID,
			"messageID": view.MessageRef,
		}).Info("Board message is gone, posting a new one")
	}

	msg, err := p.messenger.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
		Files:      []*discordgo.File{pngFile(boardImageName, image)},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to post board: %w", err)
	}
	return msg.ID, nil
}

// ShowResult closes the board's buttons and posts the result
func (p *Presenter) ShowResult(ctx context.Context, view session.ResultView) error {
	channelID := strconv.FormatInt(view.ChannelID, 10)

	if view.MessageRef != "" {
		edit := discordgo.NewMessageEdit(channelID, view.MessageRef)
		edit.Components = &[]discordgo.MessageComponent{}
		if _, err := p.messenger.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
			log.WithError(err).WithField("channelID", view.ChannelID).Debug("Failed to close board buttons")
		}
	}

	send := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{resultEmbed(view)}}
	image, err := p.renderer.Result(view)
	if err != nil {
		log.WithError(err).WithField("channelID", view.ChannelID).Warn("Failed to render result image")
		send.Embeds[0].Image = nil
	} else {
		send.Files = []*discordgo.File{pngFile(resultImageName, image)}
	}

	if _, err := p.messenger.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to post result: %w", err)
	}
	return nil
}

// AnnounceRestore tells the channel its session survived a restart
func (p *Presenter) AnnounceRestore(ctx context.Context, snapshot entities.SessionSnapshot) error {
	channelID := strconv.FormatInt(snapshot.ChannelID, 10)
	if _, err := p.messenger.ChannelMessageSend(channelID, restoreMessage(snapshot), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to announce restore: %w", err)
	}
	return nil
}

func pngFile(name string, data []byte) *discordgo.File {
	return &discordgo.File{
		Name:        name,
		ContentType: "image/png",
		Reader:      bytes.NewReader(data),
	}
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
