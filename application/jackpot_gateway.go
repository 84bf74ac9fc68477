package application

import (
	"context"
	"fmt"

	"dicehall/domain/interfaces"
	"dicehall/domain/session"
)

// JackpotGateway stores session jackpot pools through guild-scoped units of work
type JackpotGateway struct {
	uowFactory UnitOfWorkFactory
}

// NewJackpotGateway creates a jackpot store
func NewJackpotGateway(uowFactory UnitOfWorkFactory) *JackpotGateway {
	return &JackpotGateway{uowFactory: uowFactory}
}

var _ session.JackpotStore = (*JackpotGateway)(nil)

func (g *JackpotGateway) Get(ctx context.Context, guildID int64) (int64, error) {
	return g.run(ctx, guildID, func(repo interfaces.JackpotRepository) (int64, error) {
		return repo.Get(ctx)
	})
}

func (g *JackpotGateway) Add(ctx context.Context, guildID, delta int64) (int64, error) {
	return g.run(ctx, guildID, func(repo interfaces.JackpotRepository) (int64, error) {
		return repo.Add(ctx, delta)
	})
}

func (g *JackpotGateway) Drain(ctx context.Context, guildID int64) (int64, error) {
	return g.run(ctx, guildID, func(repo interfaces.JackpotRepository) (int64, error) {
		return repo.Drain(ctx)
	})
}

func (g *JackpotGateway) run(ctx context.Context, guildID int64, fn func(interfaces.JackpotRepository) (int64, error)) (int64, error) {
	uow := g.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	amount, err := fn(uow.JackpotRepository())
	if err != nil {
		return 0, err
	}
	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return amount, nil
}
