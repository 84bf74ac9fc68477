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

// MarriageRepository stores a guild's marriages
type MarriageRepository struct {
	q       Queryable
	guildID int64
}

// NewMarriageRepositoryScoped creates a marriage repository with a transaction and guild scope
func NewMarriageRepositoryScoped(tx Queryable, guildID int64) interfaces.MarriageRepository {
	return &MarriageRepository{q: tx, guildID: guildID}
}

// GetByUser finds the marriage the member is part of, on either side
func (r *MarriageRepository) GetByUser(ctx context.Context, discordID int64) (*entities.Marriage, error) {
	builder := psql.Select("id", "guild_id", "user1_id", "user2_id", "ring_name", "ring_emoji", "love_points", "married_at").
		From("marriages").
		Where(sq.Eq{"guild_id": r.guildID}).
		Where(sq.Or{sq.Eq{"user1_id": discordID}, sq.Eq{"user2_id": discordID}}).
		Suffix("FOR UPDATE")

	rows, err := query(ctx, r.q, builder)
	if err != nil {
		return nil, fmt.Errorf("failed to get marriage for %d: %w", discordID, err)
	}
	marriage, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[entities.Marriage])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan marriage: %w", err)
	}
	return marriage, nil
}

func (r *MarriageRepository) Create(ctx context.Context, marriage *entities.Marriage) error {
	marriage.GuildID = r.guildID
	query := `
		INSERT INTO marriages (guild_id, user1_id, user2_id, ring_name, ring_emoji, love_points)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, married_at
	`
	err := r.q.QueryRow(ctx, query,
		marriage.GuildID, marriage.User1ID, marriage.User2ID, marriage.RingName, marriage.RingEmoji, marriage.LovePoints,
	).Scan(&marriage.ID, &marriage.MarriedAt)
	if err != nil {
		return fmt.Errorf("failed to create marriage: %w", err)
	}
	return nil
}

func (r *MarriageRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM marriages WHERE id = $1 AND guild_id = $2`, id, r.guildID); err != nil {
		return fmt.Errorf("failed to delete marriage %d: %w", id, err)
	}
	return nil
}

func (r *MarriageRepository) UpdateLovePoints(ctx context.Context, id int64, points int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE marriages SET love_points = $1 WHERE id = $2 AND guild_id = $3`, max(points, 0), id, r.guildID)
	if err != nil {
		return fmt.Errorf("failed to update love points for marriage %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("marriage %d not found", id)
	}
	return nil
}
