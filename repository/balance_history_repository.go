package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"dicehall/domain/entities"
	"dicehall/domain/interfaces"
)

// BalanceHistoryRepository appends balance changes for one guild
type BalanceHistoryRepository struct {
	q       Queryable
	guildID int64
}

// NewBalanceHistoryRepositoryScoped creates a history repository with a transaction and guild scope
func NewBalanceHistoryRepositoryScoped(tx Queryable, guildID int64) interfaces.BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: tx, guildID: guildID}
}

// Record inserts the entry. The guild always comes from the repository scope.
func (r *BalanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	history.GuildID = r.guildID
	metadata, err := json.Marshal(history.TransactionMetadata)
	if err != nil {
		return fmt.Errorf("failed to encode transaction metadata: %w", err)
	}

	query := `
		INSERT INTO balance_history (
			discord_id, guild_id, balance_before, balance_after, change_amount,
			transaction_type, transaction_metadata, related_id, related_type
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err = r.q.QueryRow(ctx, query,
		history.DiscordID,
		history.GuildID,
		history.BalanceBefore,
		history.BalanceAfter,
		history.ChangeAmount,
		history.TransactionType,
		metadata,
		history.RelatedID,
		history.RelatedType,
	).Scan(&history.ID, &history.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record balance history for %d: %w", history.DiscordID, err)
	}
	return nil
}

// GetByUser returns the newest entries first
func (r *BalanceHistoryRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.BalanceHistory, error) {
	query := `
		SELECT id, discord_id, guild_id, balance_before, balance_after, change_amount,
		       transaction_type, transaction_metadata, related_id, related_type, created_at
		FROM balance_history
		WHERE discord_id = $1 AND guild_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`
	rows, err := r.q.Query(ctx, query, discordID, r.guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history: %w", err)
	}
	defer rows.Close()

	var histories []*entities.BalanceHistory
	for rows.Next() {
		var (
			h        entities.BalanceHistory
			metadata []byte
		)
		if err := rows.Scan(
			&h.ID, &h.DiscordID, &h.GuildID, &h.BalanceBefore, &h.BalanceAfter, &h.ChangeAmount,
			&h.TransactionType, &metadata, &h.RelatedID, &h.RelatedType, &h.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan balance history: %w", err)
		}
		if err := json.Unmarshal(metadata, &h.TransactionMetadata); err != nil {
			return nil, fmt.Errorf("failed to decode transaction metadata: %w", err)
		}
		histories = append(histories, &h)
	}
	return histories, rows.Err()
}
