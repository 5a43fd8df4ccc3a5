package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tychicus04/web-ban-den-sub006/internal/domain"
	"github.com/tychicus04/web-ban-den-sub006/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepository interface {
	GetByID(ctx context.Context, sellerID int64) (*domain.SellerAccount, error)

	// GetBalance is the fail-soft read used by dashboards: a missing account
	// row reads as zero instead of failing the whole page.
	GetBalance(ctx context.Context, sellerID int64) (int64, error)

	// GetBalanceForUpdate fetches the balance with a pessimistic row lock
	// (SELECT FOR UPDATE). Every balance-affecting check-then-act must read
	// through this so concurrent requests for one seller serialize.
	GetBalanceForUpdate(ctx context.Context, tx pgx.Tx, sellerID int64) (int64, error)

	// ApplyDelta adjusts the balance by a signed amount. It must run in the
	// same transaction as the ledger write that justifies it. Missing row is
	// a hard error.
	ApplyDelta(ctx context.Context, tx pgx.Tx, sellerID int64, delta int64) (int64, error)
}

type accountRepo struct {
	db *pgxpool.Pool
}

func NewAccountRepo(db *pgxpool.Pool) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) GetByID(ctx context.Context, sellerID int64) (*domain.SellerAccount, error) {
	query := `
		SELECT id, display_name, balance, created_at, updated_at
		FROM seller_accounts
		WHERE id = $1
	`

	var a domain.SellerAccount
	err := r.db.QueryRow(ctx, query, sellerID).Scan(
		&a.ID,
		&a.DisplayName,
		&a.Balance,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get seller account: %w", err)
	}

	return &a, nil
}

func (r *accountRepo) GetBalance(ctx context.Context, sellerID int64) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx,
		`SELECT balance FROM seller_accounts WHERE id = $1`, sellerID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

func (r *accountRepo) GetBalanceForUpdate(ctx context.Context, tx pgx.Tx, sellerID int64) (int64, error) {
	if tx == nil {
		return 0, errors.New("transaction cannot be nil for locked query")
	}

	var balance int64
	err := tx.QueryRow(ctx,
		`SELECT balance FROM seller_accounts WHERE id = $1 FOR UPDATE`, sellerID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, xerrors.ErrNotFound
		}
		return 0, fmt.Errorf("failed to get balance with lock: %w", err)
	}
	return balance, nil
}

func (r *accountRepo) ApplyDelta(ctx context.Context, tx pgx.Tx, sellerID int64, delta int64) (int64, error) {
	if tx == nil {
		return 0, errors.New("transaction cannot be nil")
	}

	query := `
		UPDATE seller_accounts
		SET balance = balance + $1, updated_at = $2
		WHERE id = $3
		RETURNING balance
	`

	var newBalance int64
	err := tx.QueryRow(ctx, query, delta, time.Now(), sellerID).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, xerrors.ErrNotFound
		}
		return 0, fmt.Errorf("failed to apply balance delta: %w", err)
	}

	if newBalance < 0 {
		return 0, xerrors.ErrInsufficientBalance
	}
	return newBalance, nil
}
