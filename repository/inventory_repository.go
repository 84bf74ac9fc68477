package repository

import (
	"context"
	"fmt"

	"dicehall/domain/entities"
	"dicehall/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// InventoryRepository stores owned rings
type InventoryRepository struct {
	q       Queryable
	guildID int64
}

// NewInventoryRepositoryScoped creates an inventory repository with a transaction and guild scope
func NewInventoryRepositoryScoped(tx Queryable, guildID int64) interfaces.InventoryRepository {
	return &InventoryRepository{q: tx, guildID: guildID}
}

// ListByUser returns items in purchase order
func (r *InventoryRepository) ListByUser(ctx context.Context, discordID int64) ([]*entities.InventoryItem, error) {
	query := `
		SELECT id, guild_id, discord_id, ring_name, ring_emoji, ring_price, acquired_at
		FROM inventory_items
		WHERE guild_id = $1 AND discord_id = $2
		ORDER BY id
	`
	rows, err := r.q.Query(ctx, query, r.guildID, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory for %d: %w", discordID, err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[entities.InventoryItem])
	if err != nil {
		return nil, fmt.Errorf("failed to scan inventory: %w", err)
	}
	return items, nil
}

func (r *InventoryRepository) Add(ctx context.Context, item *entities.InventoryItem) error {
	item.GuildID = r.guildID
	query := `
		INSERT INTO inventory_items (guild_id, discord_id, ring_name, ring_emoji, ring_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, acquired_at
	`
	err := r.q.QueryRow(ctx, query, item.GuildID, item.DiscordID, item.RingName, item.RingEmoji, item.RingPrice).
		Scan(&item.ID, &item.AcquiredAt)
	if err != nil {
		return fmt.Errorf("failed to add %s to inventory of %d: %w", item.RingName, item.DiscordID, err)
	}
	return nil
}

func (r *InventoryRepository) Remove(ctx context.Context, itemID int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1 AND guild_id = $2`, itemID, r.guildID)
	if err != nil {
		return false, fmt.Errorf("failed to remove inventory item %d: %w", itemID, err)
	}
	return tag.RowsAffected() > 0, nil
}
