package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dicehall/database"
	"dicehall/domain/entities"
	"dicehall/domain/interfaces"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// UserRepository stores guild accounts. Usernames live in the shared users table.
type UserRepository struct {
	q       Queryable
	guildID int64
}

// NewUserRepository creates a user repository on the pool for one guild
func NewUserRepository(db *database.DB, guildID int64) *UserRepository {
	return &UserRepository{q: db.Pool, guildID: guildID}
}

// NewUserRepositoryScoped creates a new user repository with a transaction and guild scope
func NewUserRepositoryScoped(tx Queryable, guildID int64) interfaces.UserRepository {
	return &UserRepository{q: tx, guildID: guildID}
}

// GetByDiscordID locks and returns the account row, so a read-modify-write
// inside one transaction cannot interleave with another writer.
func (r *UserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*entities.User, error) {
	query := `
		SELECT uga.discord_id, u.username, uga.balance, uga.created_at, uga.updated_at
		FROM user_guild_accounts uga
		JOIN users u ON u.discord_id = uga.discord_id
		WHERE uga.discord_id = $1 AND uga.guild_id = $2
		FOR UPDATE OF uga
	`

	var user entities.User
	err := r.q.QueryRow(ctx, query, discordID, r.guildID).Scan(
		&user.DiscordID,
		&user.Username,
		&user.Balance,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by discord ID %d in guild %d: %w", discordID, r.guildID, err)
	}
	return &user, nil
}

// Create inserts the user if needed and opens their account in the current guild
func (r *UserRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*entities.User, error) {
	userQuery := `
		INSERT INTO users (discord_id, username)
		VALUES ($1, $2)
		ON CONFLICT (discord_id) DO UPDATE
		SET username = CASE WHEN EXCLUDED.username = '' THEN users.username ELSE EXCLUDED.username END,
		    updated_at = NOW()
		RETURNING username
	`
	var storedName string
	if err := r.q.QueryRow(ctx, userQuery, discordID, username).Scan(&storedName); err != nil {
		return nil, fmt.Errorf("failed to create/update user %d: %w", discordID, err)
	}

	accountQuery := `
		INSERT INTO user_guild_accounts (discord_id, guild_id, balance)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.q.QueryRow(ctx, accountQuery, discordID, r.guildID, initialBalance).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("failed to create guild account for discord ID %d in guild %d: %w", discordID, r.guildID, err)
	}

	return &entities.User{
		DiscordID: discordID,
		Username:  storedName,
		Balance:   initialBalance,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// UpdateBalance overwrites the account balance
func (r *UserRepository) UpdateBalance(ctx context.Context, discordID int64, newBalance int64) error {
	query := `
		UPDATE user_guild_accounts
		SET balance = $1, updated_at = NOW()
		WHERE discord_id = $2 AND guild_id = $3
	`
	tag, err := r.q.Exec(ctx, query, newBalance, discordID, r.guildID)
	if err != nil {
		return fmt.Errorf("failed to update balance for discord ID %d in guild %d: %w", discordID, r.guildID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no account for discord ID %d in guild %d", discordID, r.guildID)
	}
	return nil
}

// GetLeaderboard returns the richest accounts, ties broken by Discord ID
func (r *UserRepository) GetLeaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error) {
	builder := psql.Select("uga.discord_id", "u.username", "uga.balance").
		From("user_guild_accounts uga").
		Join("users u ON u.discord_id = uga.discord_id").
		Where(sq.Eq{"uga.guild_id": r.guildID}).
		OrderBy("uga.balance DESC", "uga.discord_id ASC").
		Limit(uint64(max(limit, 1)))

	rows, err := query(ctx, r.q, builder)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*entities.LeaderboardEntry
	for rows.Next() {
		entry := &entities.LeaderboardEntry{Rank: len(entries) + 1}
		if err := rows.Scan(&entry.DiscordID, &entry.Username, &entry.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard: %w", err)
	}
	return entries, nil
}

// GetTotalBalance sums every account in the guild
func (r *UserRepository) GetTotalBalance(ctx context.Context) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0) FROM user_guild_accounts WHERE guild_id = $1`, r.guildID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum balances in guild %d: %w", r.guildID, err)
	}
	return total, nil
}

// ResetAllBalances sets every account in the guild to balance
func (r *UserRepository) ResetAllBalances(ctx context.Context, balance int64) (int64, error) {
	tag, err := r.q.Exec(ctx, `UPDATE user_guild_accounts SET balance = $1, updated_at = NOW() WHERE guild_id = $2`, balance, r.guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to reset balances in guild %d: %w", r.guildID, err)
	}
	return tag.RowsAffected(), nil
}
