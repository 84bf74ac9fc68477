package transfer

import (
	"dicehall/application"

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

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleGive(s, i)
}
