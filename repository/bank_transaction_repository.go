package repository

import (
	"context"
	"errors"
	"fmt"

	"dicehall/domain/entities"
	"dicehall/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// BankTransactionRepository keeps the raw bank feed. It is not guild scoped.
type BankTransactionRepository struct {
	q Queryable
}

// NewBankTransactionRepositoryScoped creates a bank transaction repository on a transaction
func NewBankTransactionRepositoryScoped(tx Queryable) interfaces.BankTransactionRepository {
	return &BankTransactionRepository{q: tx}
}

// Save inserts the transaction and reports false for a duplicate ID
func (r *BankTransactionRepository) Save(ctx context.Context, tx *entities.BankTransaction) (bool, error) {
	if tx.Code == nil {
		if code, ok := entities.ExtractTopupCode(tx.Description); ok {
			tx.Code = &code
		}
	}

	query := `
		INSERT INTO bank_transactions (transaction_id, amount, description, code)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (transaction_id) DO NOTHING
		RETURNING received_at
	`
	err := r.q.QueryRow(ctx, query, tx.TransactionID, tx.Amount, tx.Description, tx.Code).Scan(&tx.ReceivedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to save bank transaction %s: %w", tx.TransactionID, err)
	}
	return true, nil
}

func (r *BankTransactionRepository) GetUnclaimedByCode(ctx context.Context, code string) (*entities.BankTransaction, error) {
	query := `
		SELECT transaction_id, amount, description, code, claimed, received_at
		FROM bank_transactions
		WHERE code = $1 AND NOT claimed
		ORDER BY received_at
		LIMIT 1
		FOR UPDATE
	`
	var tx entities.BankTransaction
	err := r.q.QueryRow(ctx, query, code).Scan(&tx.TransactionID, &tx.Amount, &tx.Description, &tx.Code, &tx.Claimed, &tx.ReceivedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bank transaction for code %s: %w", code, err)
	}
	return &tx, nil
}

func (r *BankTransactionRepository) MarkClaimed(ctx context.Context, transactionID string) error {
	tag, err := r.q.Exec(ctx, `UPDATE bank_transactions SET claimed = TRUE WHERE transaction_id = $1 AND NOT claimed`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to claim bank transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bank transaction %s is unknown or already claimed", transactionID)
	}
	return nil
}
