package repository

import (
	"context"
	"errors"
	"fmt"

	"dicehall/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// JackpotRepository holds one guild's DiceSum pool
type JackpotRepository struct {
	q       Queryable
	guildID int64
}

// NewJackpotRepositoryScoped creates a jackpot repository with a transaction and guild scope
func NewJackpotRepositoryScoped(tx Queryable, guildID int64) interfaces.JackpotRepository {
	return &JackpotRepository{q: tx, guildID: guildID}
}

func (r *JackpotRepository) Get(ctx context.Context) (int64, error) {
	var amount int64
	err := r.q.QueryRow(ctx, `SELECT amount FROM jackpots WHERE guild_id = $1`, r.guildID).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get jackpot for guild %d: %w", r.guildID, err)
	}
	return amount, nil
}

func (r *JackpotRepository) Add(ctx context.Context, delta int64) (int64, error) {
	query := `
		INSERT INTO jackpots (guild_id, amount)
		VALUES ($1, GREATEST($2::BIGINT, 0))
		ON CONFLICT (guild_id) DO UPDATE
		SET amount = GREATEST(jackpots.amount + $2::BIGINT, 0), updated_at = NOW()
		RETURNING amount
	`
	var amount int64
	if err := r.q.QueryRow(ctx, query, r.guildID, delta).Scan(&amount); err != nil {
		return 0, fmt.Errorf("failed to add to jackpot for guild %d: %w", r.guildID, err)
	}
	return amount, nil
}

func (r *JackpotRepository) Drain(ctx context.Context) (int64, error) {
	query := `
		WITH previous AS (
			SELECT amount FROM jackpots WHERE guild_id = $1 FOR UPDATE
		)
		UPDATE jackpots j
		SET amount = 0, updated_at = NOW()
		FROM previous
		WHERE j.guild_id = $1
		RETURNING previous.amount
	`
	var amount int64
	err := r.q.QueryRow(ctx, query, r.guildID).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to drain jackpot for guild %d: %w", r.guildID, err)
	}
	return amount, nil
}
