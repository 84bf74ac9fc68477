package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dicehall/domain/entities"
	"dicehall/domain/events"
	"dicehall/domain/game"

	log "github.com/sirupsen/logrus"
)

// Registry maps channels to their live session. A channel has at most one.
type Registry struct {
	deps Dependencies

	// lifecycle serialises start, stop and shutdown
	lifecycle sync.Mutex

	mu       sync.RWMutex
	sessions map[int64]*Handle
}

// NewRegistry creates an empty registry
func NewRegistry(deps Dependencies) *Registry {
	return &Registry{
		deps:     deps.withDefaults(),
		sessions: make(map[int64]*Handle),
	}
}

// Start creates a session for the channel and waits until its first board is out
func (r *Registry) Start(ctx context.Context, channelID, guildID int64, kind entities.GameKind) (*Handle, error) {
	rules, err := game.ForKind(kind)
	if err != nil {
		return nil, err
	}

	r.lifecycle.Lock()
	h, err := r.register(ctx, channelID, guildID, rules, 1, false)
	r.lifecycle.Unlock()
	if err != nil {
		return nil, err
	}

	return h, r.awaitReady(ctx, h)
}

// register must be called with lifecycle held
func (r *Registry) register(ctx context.Context, channelID, guildID int64, rules game.Rules, round int, restored bool) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[channelID]; exists {
		return nil, game.ErrAlreadySessionActive
	}

	actorCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h := newHandle(channelID, guildID, rules, cancel)
	s := newState(&r.deps, rules, channelID, guildID, round)
	round = s.round
	r.sessions[channelID] = h

	go h.run(actorCtx, s, restored)

	r.deps.Observer.SessionStarted(rules.Kind())
	if err := r.deps.Publisher.Publish(events.SessionStartedEvent{
		ChannelID: channelID,
		GuildID:   guildID,
		Kind:      rules.Kind(),
		Round:     round,
		Restored:  restored,
	}); err != nil {
		log.WithError(err).Warn("Failed to publish session started event")
	}

	log.WithFields(log.Fields{
		"channelID": channelID,
		"guildID":   guildID,
		"round":     round,
		"gameKind":  rules.Kind(),
		"restored":  restored,
	}).Info("Session started")

	return h, nil
}

func (r *Registry) awaitReady(ctx context.Context, h *Handle) error {
	select {
	case <-h.ready:
		return nil
	case <-h.done:
		return game.ErrNoActiveSession
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels the channel's session and deletes its persisted row. It
// reports whether a session existed. Committed stakes are not refunded.
func (r *Registry) Stop(ctx context.Context, channelID int64) (bool, error) {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	r.mu.Lock()
	h, ok := r.sessions[channelID]
	delete(r.sessions, channelID)
	r.mu.Unlock()
	if !ok {
		return false, nil
	}

	h.cancel()
	<-h.done
	final := h.final

	r.deps.Observer.SessionStopped(h.Kind())
	if err := r.deps.Publisher.Publish(events.SessionStoppedEvent{
		ChannelID: channelID,
		GuildID:   h.guildID,
		Kind:      h.Kind(),
		Round:     final.Round,
	}); err != nil {
		log.WithError(err).Warn("Failed to publish session stopped event")
	}

	logger := log.WithFields(log.Fields{
		"channelID": channelID,
		"guildID":   h.guildID,
		"round":     final.Round,
		"gameKind":  h.Kind(),
	})
	if len(final.Bets) > 0 {
		logger = logger.WithField("forfeitedBets", len(final.Bets))
	}

	if err := r.deps.Store.Delete(ctx, channelID); err != nil {
		logger.WithError(err).Error("Failed to delete stopped session")
		return true, fmt.Errorf("failed to delete session for channel %d: %w", channelID, err)
	}

	logger.Info("Session stopped")
	return true, nil
}

// Get returns the channel's live session
func (r *Registry) Get(channelID int64) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.sessions[channelID]
	return h, ok
}

// List returns every live session ordered by channel
func (r *Registry) List() []*Handle {
	r.mu.RLock()
	handles := make([]*Handle, 0, len(r.sessions))
	for _, h := range r.sessions {
		handles = append(handles, h)
	}
	r.mu.RUnlock()

	sort.Slice(handles, func(i, j int) bool { return handles[i].channelID < handles[j].channelID })
	return handles
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sessions summarises every live session
func (r *Registry) Sessions(ctx context.Context) []Info {
	handles := r.List()
	infos := make([]Info, 0, len(handles))
	for _, h := range handles {
		info, err := h.Info(ctx)
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}
	return infos
}

// TickAll advances every session by one tick and waits for each to finish it
func (r *Registry) TickAll() {
	for _, h := range r.List() {
		h.tickSync()
	}
}

func (r *Registry) tickAll() {
	for _, h := range r.List() {
		h.tickAsync()
	}
}

// Restore brings back every persisted session. Rounds are kept, bets from
// the interrupted round are dropped, and a fresh Collecting phase starts.
func (r *Registry) Restore(ctx context.Context) (int, error) {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	var restored []*Handle
	for _, kind := range entities.AllGameKinds {
		rules, err := game.ForKind(kind)
		if err != nil {
			return len(restored), err
		}

		snapshots, err := r.deps.Store.FindActiveByGameKind(ctx, kind)
		if err != nil {
			return len(restored), fmt.Errorf("failed to load %s sessions: %w", kind, err)
		}

		for _, snapshot := range snapshots {
			h, err := r.register(ctx, snapshot.ChannelID, snapshot.GuildID, rules, snapshot.Round, true)
			if err != nil {
				log.WithError(err).WithField("channelID", snapshot.ChannelID).Warn("Skipping session restore")
				continue
			}
			restored = append(restored, h)
		}
	}

	for _, h := range restored {
		if err := r.awaitReady(ctx, h); err != nil {
			return len(restored), err
		}
	}
	return len(restored), nil
}

// Shutdown checkpoints and stops every session while keeping their rows so
// the next process restores them
func (r *Registry) Shutdown(ctx context.Context) {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	r.mu.Lock()
	handles := make([]*Handle, 0, len(r.sessions))
	for channelID, h := range r.sessions {
		handles = append(handles, h)
		delete(r.sessions, channelID)
	}
	r.mu.Unlock()

	for _, h := range handles {
		if err := h.Checkpoint(ctx); err != nil {
			log.WithError(err).WithField("channelID", h.channelID).Warn("Failed to checkpoint session on shutdown")
		}
		h.cancel()
		<-h.done
	}
	log.Infof("Suspended %d sessions", len(handles))
}
