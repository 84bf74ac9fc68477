// Package session runs recurring group dice games, one per channel.
//
// Each live session is owned by a single goroutine. Bets, ticks and
// lifecycle requests reach it as messages, so session state is never
// shared. A Registry tracks the live sessions and a Scheduler fans a
// one second tick out to all of them.
package session

import (
	"context"

	"dicehall/domain/entities"
	"dicehall/domain/game"
)

// Store persists session snapshots so a restart can resume channels
type Store interface {
	Save(ctx context.Context, snapshot *entities.SessionSnapshot) error
	Delete(ctx context.Context, channelID int64) error
	FindActiveByGameKind(ctx context.Context, kind entities.GameKind) ([]*entities.SessionSnapshot, error)
}

// JackpotStore holds the durable per guild pools
type JackpotStore interface {
	Get(ctx context.Context, guildID int64) (int64, error)
	Add(ctx context.Context, guildID, delta int64) (int64, error)
	Drain(ctx context.Context, guildID int64) (int64, error)
}

// BoardView is what the presenter needs to draw the betting board
type BoardView struct {
	ChannelID  int64
	GuildID    int64
	Kind       entities.GameKind
	Round      int
	Remaining  int
	Totals     map[entities.Side]int64
	Players    int
	Jackpot    int64
	Sides      []entities.Side
	Chips      []int64
	MessageRef string
}

// ResultLine is one player's row on the result board
type ResultLine struct {
	game.PayoutLine
	DisplayName string
}

// ResultView is a settled round ready for rendering
type ResultView struct {
	ChannelID   int64
	GuildID     int64
	Kind        entities.GameKind
	Round       int
	Outcome     entities.Outcome
	Lines       []ResultLine
	JackpotPaid int64
	// Jackpot is the pool left after settlement
	Jackpot int64
	// JackpotUnknown is set when the pool could not be read this round
	JackpotUnknown bool
	MessageRef     string
}

// Presenter renders boards and results. ShowBoard edits MessageRef in place
// when it is set and returns the reference of the message it wrote.
type Presenter interface {
	ShowBoard(ctx context.Context, view BoardView) (string, error)
	ShowResult(ctx context.Context, view ResultView) error
	AnnounceRestore(ctx context.Context, snapshot entities.SessionSnapshot) error
}

// IdentityResolver turns user IDs into names for result rendering
type IdentityResolver interface {
	DisplayName(ctx context.Context, guildID, userID int64) (string, error)
}

// Observer receives engine activity, used for metrics
type Observer interface {
	SessionStarted(kind entities.GameKind)
	SessionStopped(kind entities.GameKind)
	BetCommitted(kind entities.GameKind, amount int64)
	RoundResolved(kind entities.GameKind, settlement game.Settlement)
}

// NoopObserver ignores everything
type NoopObserver struct{}

func (NoopObserver) SessionStarted(entities.GameKind) {}
func (NoopObserver) SessionStopped(entities.GameKind) {}
func (NoopObserver) BetCommitted(entities.GameKind, int64) {}
func (NoopObserver) RoundResolved(entities.GameKind, game.Settlement) {}

// PlaceholderName is shown when a player's name cannot be resolved
const PlaceholderName = "Player"
