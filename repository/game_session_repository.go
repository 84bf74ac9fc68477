package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"dicehall/database"
	"dicehall/domain/entities"
	"dicehall/domain/interfaces"
)

// GameSessionRepository persists channel sessions across every guild
type GameSessionRepository struct {
	q Queryable
}

// NewGameSessionRepository creates a session repository on the pool
func NewGameSessionRepository(db *database.DB) interfaces.GameSessionRepository {
	return &GameSessionRepository{q: db.Pool}
}

// Save upserts the snapshot keyed by channel
func (r *GameSessionRepository) Save(ctx context.Context, snapshot *entities.SessionSnapshot) error {
	bets, err := json.Marshal(orEmpty(snapshot.Bets))
	if err != nil {
		return fmt.Errorf("failed to encode bets: %w", err)
	}
	pending, err := json.Marshal(orEmpty(snapshot.Pending))
	if err != nil {
		return fmt.Errorf("failed to encode pending selections: %w", err)
	}

	query := `
		INSERT INTO game_sessions (channel_id, guild_id, game_kind, round, bets, pending, message_ref, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		ON CONFLICT (channel_id) DO UPDATE SET
			guild_id = EXCLUDED.guild_id,
			game_kind = EXCLUDED.game_kind,
			round = EXCLUDED.round,
			bets = EXCLUDED.bets,
			pending = EXCLUDED.pending,
			message_ref = EXCLUDED.message_ref,
			is_active = TRUE,
			updated_at = NOW()
		RETURNING updated_at
	`
	err = r.q.QueryRow(ctx, query,
		snapshot.ChannelID,
		snapshot.GuildID,
		snapshot.Kind,
		snapshot.Round,
		bets,
		pending,
		snapshot.MessageRef,
	).Scan(&snapshot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save session for channel %d: %w", snapshot.ChannelID, err)
	}
	snapshot.Active = true
	return nil
}

// Delete removes the channel's row
func (r *GameSessionRepository) Delete(ctx context.Context, channelID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM game_sessions WHERE channel_id = $1`, channelID); err != nil {
		return fmt.Errorf("failed to delete session for channel %d: %w", channelID, err)
	}
	return nil
}

// FindActiveByGameKind lists every active session of a variant
func (r *GameSessionRepository) FindActiveByGameKind(ctx context.Context, kind entities.GameKind) ([]*entities.SessionSnapshot, error) {
	query := `
		SELECT channel_id, guild_id, game_kind, round, bets, pending, message_ref, is_active, updated_at
		FROM game_sessions
		WHERE game_kind = $1 AND is_active
		ORDER BY channel_id
	`
	rows, err := r.q.Query(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s sessions: %w", kind, err)
	}
	defer rows.Close()

	var snapshots []*entities.SessionSnapshot
	for rows.Next() {
		var (
			s             entities.SessionSnapshot
			bets, pending []byte
		)
		if err := rows.Scan(&s.ChannelID, &s.GuildID, &s.Kind, &s.Round, &bets, &pending, &s.MessageRef, &s.Active, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if err := json.Unmarshal(bets, &s.Bets); err != nil {
			return nil, fmt.Errorf("failed to decode bets for channel %d: %w", s.ChannelID, err)
		}
		if err := json.Unmarshal(pending, &s.Pending); err != nil {
			return nil, fmt.Errorf("failed to decode pending selections for channel %d: %w", s.ChannelID, err)
		}
		snapshots = append(snapshots, &s)
	}
	return snapshots, rows.Err()
}

func orEmpty[V any](m map[int64]V) map[int64]V {
	if m == nil {
		return map[int64]V{}
	}
	return m
}
