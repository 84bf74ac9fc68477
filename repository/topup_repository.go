package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dicehall/domain/entities"
	"dicehall/domain/interfaces"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var topupColumns = []string{
	"id", "guild_id", "discord_id", "channel_id", "code", "amount", "status",
	"transaction_id", "description", "expires_at", "created_at", "paid_at",
}

// TopupRepository stores topup requests. A zero guild reads and updates every guild.
type TopupRepository struct {
	q       Queryable
	guildID int64
}

// NewTopupRepositoryScoped creates a topup repository with a transaction and guild scope
func NewTopupRepositoryScoped(tx Queryable, guildID int64) interfaces.TopupRepository {
	return &TopupRepository{q: tx, guildID: guildID}
}

func (r *TopupRepository) scoped(pred sq.Sqlizer) sq.And {
	and := sq.And{pred}
	if r.guildID != 0 {
		and = append(and, sq.Eq{"guild_id": r.guildID})
	}
	return and
}

func (r *TopupRepository) Create(ctx context.Context, topup *entities.Topup) error {
	if r.guildID == 0 {
		return errors.New("topups must be created in a guild")
	}
	topup.GuildID = r.guildID

	builder := psql.Insert("topups").
		Columns("guild_id", "discord_id", "channel_id", "code", "status", "expires_at").
		Values(topup.GuildID, topup.DiscordID, topup.ChannelID, topup.Code, topup.Status, topup.ExpiresAt).
		Suffix("RETURNING id, created_at")

	row, err := queryRow(ctx, r.q, builder)
	if err != nil {
		return fmt.Errorf("failed to build topup insert: %w", err)
	}
	if err := row.Scan(&topup.ID, &topup.CreatedAt); err != nil {
		return fmt.Errorf("failed to create topup %s: %w", topup.Code, err)
	}
	return nil
}

func (r *TopupRepository) GetPendingByUser(ctx context.Context, discordID int64) (*entities.Topup, error) {
	return r.findOne(ctx, sq.Eq{"discord_id": discordID, "status": entities.TopupStatusPending})
}

func (r *TopupRepository) GetPendingByCode(ctx context.Context, code string) (*entities.Topup, error) {
	return r.findOne(ctx, sq.Eq{"code": code, "status": entities.TopupStatusPending})
}

func (r *TopupRepository) findOne(ctx context.Context, pred sq.Eq) (*entities.Topup, error) {
	builder := psql.Select(topupColumns...).
		From("topups").
		Where(r.scoped(pred)).
		OrderBy("created_at DESC").
		Limit(1).
		Suffix("FOR UPDATE")

	rows, err := query(ctx, r.q, builder)
	if err != nil {
		return nil, fmt.Errorf("failed to query topups: %w", err)
	}
	topup, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[entities.Topup])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan topup: %w", err)
	}
	return topup, nil
}

// MarkPaid settles a pending topup. It fails if the topup was settled or expired meanwhile.
func (r *TopupRepository) MarkPaid(ctx context.Context, id int64, transactionID, description string, amount int64, paidAt time.Time) error {
	builder := psql.Update("topups").
		Set("status", entities.TopupStatusPaid).
		Set("transaction_id", transactionID).
		Set("description", description).
		Set("amount", amount).
		Set("paid_at", paidAt).
		Where(r.scoped(sq.Eq{"id": id, "status": entities.TopupStatusPending}))

	tag, err := exec(ctx, r.q, builder)
	if err != nil {
		return fmt.Errorf("failed to mark topup %d paid: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("topup %d is no longer pending", id)
	}
	return nil
}

func (r *TopupRepository) MarkExpired(ctx context.Context, id int64) error {
	builder := psql.Update("topups").
		Set("status", entities.TopupStatusExpired).
		Where(r.scoped(sq.Eq{"id": id, "status": entities.TopupStatusPending}))

	if _, err := exec(ctx, r.q, builder); err != nil {
		return fmt.Errorf("failed to expire topup %d: %w", id, err)
	}
	return nil
}

func (r *TopupRepository) ExpireOld(ctx context.Context, now time.Time) (int64, error) {
	builder := psql.Update("topups").
		Set("status", entities.TopupStatusExpired).
		Where(r.scoped(sq.And{
			sq.Eq{"status": entities.TopupStatusPending},
			sq.LtOrEq{"expires_at": now},
		}))

	tag, err := exec(ctx, r.q, builder)
	if err != nil {
		return 0, fmt.Errorf("failed to expire old topups: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *TopupRepository) GetRevenueTotals(ctx context.Context) (int64, int64, error) {
	builder := psql.Select("COALESCE(SUM(amount), 0)", "COUNT(*)").
		From("topups").
		Where(r.scoped(sq.Eq{"status": entities.TopupStatusPaid}))

	row, err := queryRow(ctx, r.q, builder)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build revenue query: %w", err)
	}
	var total, count int64
	if err := row.Scan(&total, &count); err != nil {
		return 0, 0, fmt.Errorf("failed to get revenue totals: %w", err)
	}
	return total, count, nil
}

func (r *TopupRepository) GetRecentPaid(ctx context.Context, limit int) ([]*entities.Topup, error) {
	builder := psql.Select(topupColumns...).
		From("topups").
		Where(r.scoped(sq.Eq{"status": entities.TopupStatusPaid})).
		OrderBy("paid_at DESC", "id DESC").
		Limit(uint64(max(limit, 1)))

	rows, err := query(ctx, r.q, builder)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent topups: %w", err)
	}
	topups, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[entities.Topup])
	if err != nil {
		return nil, fmt.Errorf("failed to scan recent topups: %w", err)
	}
	return topups, nil
}

func (r *TopupRepository) DeletePaid(ctx context.Context) (int64, error) {
	builder := psql.Delete("topups").Where(r.scoped(sq.Eq{"status": entities.TopupStatusPaid}))
	tag, err := exec(ctx, r.q, builder)
	if err != nil {
		return 0, fmt.Errorf("failed to delete paid topups: %w", err)
	}
	return tag.RowsAffected(), nil
}
