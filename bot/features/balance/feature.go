package balance

import (
	"dicehall/application"

	"github.com/bwmarrin/discordgo"
)

// Feature answers /balance and /leaderboard
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
	switch i.ApplicationCommandData().Name {
	case "leaderboard":
		f.handleLeaderboard(s, i)
	default:
		f.handleBalance(s, i)
	}
}
