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

type LedgerRepository interface {
	// Append is the only write path for new entries.
	Append(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error

	GetByID(ctx context.Context, id int64) (*domain.LedgerEntry, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.LedgerEntry, error)
	ListBySeller(ctx context.Context, sellerID int64, filter *domain.LedgerFilter) ([]*domain.LedgerEntry, error)

	// SumApproved returns the signed sum of approved entries, optionally
	// narrowed by sign and creation time. Only approved entries count so a
	// still-pending withdrawal is never double-counted.
	SumApproved(ctx context.Context, sellerID int64, sign domain.EntrySign, since *time.Time) (int64, error)

	// SumWithdrawnToday returns the positive magnitude of the seller's
	// non-rejected withdrawal entries created since the given instant. It
	// runs inside the caller's transaction so the daily-cap check sees the
	// same snapshot as the locked balance read.
	SumWithdrawnToday(ctx context.Context, tx pgx.Tx, sellerID int64, since time.Time) (int64, error)

	// SumPendingHold returns the positive magnitude of the seller's pending
	// withdrawal entries. Queued requests hold funds against the balance
	// check even though the balance itself moves only on approval.
	SumPendingHold(ctx context.Context, tx pgx.Tx, sellerID int64) (int64, error)

	// UpdateApproval transitions a pending entry to approved or rejected.
	// Any other edge is refused.
	UpdateApproval(ctx context.Context, tx pgx.Tx, id int64, status domain.ApprovalStatus) error
}

type ledgerRepo struct {
	db *pgxpool.Pool
}

func NewLedgerRepo(db *pgxpool.Pool) LedgerRepository {
	return &ledgerRepo{db: db}
}

const ledgerColumns = `
	id, seller_id, amount, method, details, approval, requires_review,
	receipt_ref, reference_code, bank_name, bank_account, bank_holder,
	note, created_at, approved_at
`

func scanEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := row.Scan(
		&e.ID,
		&e.SellerID,
		&e.Amount,
		&e.Method,
		&e.Details,
		&e.Approval,
		&e.RequiresReview,
		&e.ReceiptRef,
		&e.ReferenceCode,
		&e.BankName,
		&e.BankAccount,
		&e.BankHolder,
		&e.Note,
		&e.CreatedAt,
		&e.ApprovedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ledgerRepo) Append(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	if tx == nil {
		return errors.New("transaction cannot be nil")
	}

	var approvedAt *time.Time
	if e.Approval == domain.ApprovalApproved {
		now := time.Now()
		approvedAt = &now
	}

	err := tx.QueryRow(ctx, `
		INSERT INTO wallet_ledger (
			seller_id, amount, method, details, approval, requires_review,
			receipt_ref, reference_code, bank_name, bank_account, bank_holder,
			note, created_at, approved_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id, created_at
	`,
		e.SellerID, e.Amount, e.Method, e.Details, e.Approval, e.RequiresReview,
		e.ReceiptRef, e.ReferenceCode, e.BankName, e.BankAccount, e.BankHolder,
		e.Note, time.Now(), approvedAt,
	).Scan(&e.ID, &e.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append ledger entry (pg code %s): %w",
			xerrors.ParsePGErrorCode(err), err)
	}
	e.ApprovedAt = approvedAt
	return nil
}

func (r *ledgerRepo) GetByID(ctx context.Context, id int64) (*domain.LedgerEntry, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM wallet_ledger WHERE id = $1`, id)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return e, nil
}

func (r *ledgerRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.LedgerEntry, error) {
	if tx == nil {
		return nil, errors.New("transaction cannot be nil for locked query")
	}

	row := tx.QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM wallet_ledger WHERE id = $1 FOR UPDATE`, id)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ledger entry with lock: %w", err)
	}
	return e, nil
}

func (r *ledgerRepo) ListBySeller(ctx context.Context, sellerID int64, filter *domain.LedgerFilter) ([]*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM wallet_ledger WHERE seller_id = $1`
	args := []interface{}{sellerID}
	argIndex := 2

	if filter != nil {
		if filter.Approval != nil {
			query += fmt.Sprintf(" AND approval = $%d", argIndex)
			args = append(args, *filter.Approval)
			argIndex++
		}
		switch filter.Sign {
		case domain.SignPositive:
			query += " AND amount > 0"
		case domain.SignNegative:
			query += " AND amount < 0"
		}
		if filter.Since != nil {
			query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
			args = append(args, *filter.Since)
			argIndex++
		}
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filter != nil && filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}

	return entries, nil
}

func (r *ledgerRepo) SumApproved(ctx context.Context, sellerID int64, sign domain.EntrySign, since *time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM wallet_ledger
		WHERE seller_id = $1 AND approval = $2
	`
	args := []interface{}{sellerID, domain.ApprovalApproved}
	argIndex := 3

	switch sign {
	case domain.SignPositive:
		query += " AND amount > 0"
	case domain.SignNegative:
		query += " AND amount < 0"
	}
	if since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, *since)
	}

	var sum int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum approved entries: %w", err)
	}
	return sum, nil
}

func (r *ledgerRepo) SumWithdrawnToday(ctx context.Context, tx pgx.Tx, sellerID int64, since time.Time) (int64, error) {
	if tx == nil {
		return 0, errors.New("transaction cannot be nil")
	}

	// Pending requests count too: the cap bounds what a seller can queue in
	// a day, not only what has been paid out.
	var sum int64
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(-amount), 0)
		FROM wallet_ledger
		WHERE seller_id = $1 AND amount < 0 AND approval >= $2 AND created_at >= $3
	`, sellerID, domain.ApprovalPending, since).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum today's withdrawals: %w", err)
	}
	return sum, nil
}

func (r *ledgerRepo) SumPendingHold(ctx context.Context, tx pgx.Tx, sellerID int64) (int64, error) {
	if tx == nil {
		return 0, errors.New("transaction cannot be nil")
	}

	var sum int64
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(-amount), 0)
		FROM wallet_ledger
		WHERE seller_id = $1 AND amount < 0 AND approval = $2
	`, sellerID, domain.ApprovalPending).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum pending withdrawals: %w", err)
	}
	return sum, nil
}

func (r *ledgerRepo) UpdateApproval(ctx context.Context, tx pgx.Tx, id int64, status domain.ApprovalStatus) error {
	if tx == nil {
		return errors.New("transaction cannot be nil")
	}
	if status != domain.ApprovalApproved && status != domain.ApprovalRejected {
		return xerrors.ErrInvalidRequest
	}

	var cmd string
	var args []interface{}
	if status == domain.ApprovalApproved {
		cmd = `UPDATE wallet_ledger SET approval = $1, approved_at = $2 WHERE id = $3 AND approval = $4`
		args = []interface{}{status, time.Now(), id, domain.ApprovalPending}
	} else {
		cmd = `UPDATE wallet_ledger SET approval = $1 WHERE id = $2 AND approval = $3`
		args = []interface{}{status, id, domain.ApprovalPending}
	}

	tag, err := tx.Exec(ctx, cmd, args...)
	if err != nil {
		return fmt.Errorf("failed to update approval: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrEntryNotPending
	}
	return nil
}
