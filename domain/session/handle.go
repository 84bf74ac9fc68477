package session

import (
	"context"

	"dicehall/domain/entities"
	"dicehall/domain/game"
)

type command func(ctx context.Context, s *state)

// Handle is the outside view of one live session. Every method is safe for
// concurrent use; the work itself runs on the session's own goroutine.
type Handle struct {
	channelID int64
	guildID   int64
	rules     game.Rules

	inbox  chan command
	ticks  chan chan struct{}
	ready  chan struct{}
	done   chan struct{}
	cancel context.CancelFunc

	// final is written by the actor before done is closed
	final entities.SessionSnapshot
}

func newHandle(channelID, guildID int64, rules game.Rules, cancel context.CancelFunc) *Handle {
	return &Handle{
		channelID: channelID,
		guildID:   guildID,
		rules:     rules,
		inbox:     make(chan command),
		ticks:     make(chan chan struct{}, 1),
		ready:     make(chan struct{}),
		done:      make(chan struct{}),
		cancel:    cancel,
	}
}

func (h *Handle) ChannelID() int64 { return h.channelID }

func (h *Handle) GuildID() int64 { return h.guildID }

func (h *Handle) Kind() entities.GameKind { return h.rules.Kind() }

func (h *Handle) Rules() game.Rules { return h.rules }

func (h *Handle) run(ctx context.Context, s *state, restored bool) {
	defer close(h.done)
	defer func() { h.final = s.snapshot() }()

	s.begin(ctx, restored)
	close(h.ready)

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-h.inbox:
			cmd(ctx, s)
		case ack := <-h.ticks:
			s.tick(ctx)
			if ack != nil {
				close(ack)
			}
		}
	}
}

// exec runs fn on the actor and waits for it to finish
func (h *Handle) exec(ctx context.Context, fn command) error {
	finished := make(chan struct{})
	cmd := func(actorCtx context.Context, s *state) {
		defer close(finished)
		fn(actorCtx, s)
	}

	select {
	case h.inbox <- cmd:
	case <-h.done:
		return game.ErrNoActiveSession
	case <-ctx.Done():
		return ctx.Err()
	}

	// the inbox is unbuffered, so an accepted command always runs
	<-finished
	return nil
}

func (h *Handle) tickAsync() {
	select {
	case h.ticks <- nil:
	default:
	}
}

func (h *Handle) tickSync() bool {
	ack := make(chan struct{})
	select {
	case h.ticks <- ack:
	case <-h.done:
		return false
	}
	select {
	case <-ack:
		return true
	case <-h.done:
		return false
	}
}

// SelectAmount stores a chip choice without moving any money. A non-zero
// round must match the current one.
func (h *Handle) SelectAmount(ctx context.Context, userID int64, round int, amount int64) error {
	var result error
	if err := h.exec(ctx, func(_ context.Context, s *state) {
		result = s.selectAmount(userID, round, amount)
	}); err != nil {
		return err
	}
	return result
}

// PlaceBet commits a stake on side, debiting the user immediately. A zero
// amount uses the selected chip, or DefaultStake when none was chosen.
func (h *Handle) PlaceBet(ctx context.Context, userID int64, round int, side entities.Side, amount int64) (*BetReceipt, error) {
	var (
		receipt *BetReceipt
		result  error
	)
	if err := h.exec(ctx, func(actorCtx context.Context, s *state) {
		receipt, result = s.placeBet(actorCtx, userID, round, side, amount)
	}); err != nil {
		return nil, err
	}
	return receipt, result
}

// Info returns a summary of the session
func (h *Handle) Info(ctx context.Context) (Info, error) {
	var info Info
	err := h.exec(ctx, func(_ context.Context, s *state) {
		info = s.info()
	})
	return info, err
}

// Snapshot returns a deep copy of the session state
func (h *Handle) Snapshot(ctx context.Context) (entities.SessionSnapshot, error) {
	var snapshot entities.SessionSnapshot
	err := h.exec(ctx, func(_ context.Context, s *state) {
		snapshot = s.snapshot()
	})
	return snapshot, err
}

// Checkpoint persists the session now
func (h *Handle) Checkpoint(ctx context.Context) error {
	return h.exec(ctx, func(actorCtx context.Context, s *state) {
		s.persist(actorCtx)
	})
}
