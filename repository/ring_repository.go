package repository

import (
	"context"
	"errors"
	"fmt"

	"dicehall/domain/entities"
	"dicehall/domain/interfaces"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var ringColumns = []string{"id", "guild_id", "name", "emoji", "price", "created_at"}

// RingRepository holds a guild's ring shop
type RingRepository struct {
	q       Queryable
	guildID int64
}

// NewRingRepositoryScoped creates a ring repository with a transaction and guild scope
func NewRingRepositoryScoped(tx Queryable, guildID int64) interfaces.RingRepository {
	return &RingRepository{q: tx, guildID: guildID}
}

// List returns the shop cheapest first
func (r *RingRepository) List(ctx context.Context) ([]*entities.Ring, error) {
	builder := psql.Select(ringColumns...).
		From("rings").
		Where(sq.Eq{"guild_id": r.guildID}).
		OrderBy("price ASC", "name ASC")

	rows, err := query(ctx, r.q, builder)
	if err != nil {
		return nil, fmt.Errorf("failed to list rings: %w", err)
	}
	rings, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[entities.Ring])
	if err != nil {
		return nil, fmt.Errorf("failed to scan rings: %w", err)
	}
	return rings, nil
}

// GetByName matches the name case-insensitively
func (r *RingRepository) GetByName(ctx context.Context, name string) (*entities.Ring, error) {
	builder := psql.Select(ringColumns...).
		From("rings").
		Where(sq.Eq{"guild_id": r.guildID}).
		Where("LOWER(name) = LOWER(?)", name)

	rows, err := query(ctx, r.q, builder)
	if err != nil {
		return nil, fmt.Errorf("failed to get ring %q: %w", name, err)
	}
	ring, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[entities.Ring])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan ring %q: %w", name, err)
	}
	return ring, nil
}

func (r *RingRepository) Create(ctx context.Context, ring *entities.Ring) error {
	ring.GuildID = r.guildID
	builder := psql.Insert("rings").
		Columns("guild_id", "name", "emoji", "price").
		Values(ring.GuildID, ring.Name, ring.Emoji, ring.Price).
		Suffix("RETURNING id, created_at")

	row, err := queryRow(ctx, r.q, builder)
	if err != nil {
		return fmt.Errorf("failed to build ring insert: %w", err)
	}
	if err := row.Scan(&ring.ID, &ring.CreatedAt); err != nil {
		return fmt.Errorf("failed to create ring %q: %w", ring.Name, err)
	}
	return nil
}

func (r *RingRepository) Delete(ctx context.Context, name string) (bool, error) {
	builder := psql.Delete("rings").
		Where(sq.Eq{"guild_id": r.guildID}).
		Where("LOWER(name) = LOWER(?)", name)

	tag, err := exec(ctx, r.q, builder)
	if err != nil {
		return false, fmt.Errorf("failed to delete ring %q: %w", name, err)
	}
	return tag.RowsAffected() > 0, nil
}
