package xerrors

import "errors"
import "github.com/jackc/pgx/v5/pgconn"

func ParsePGErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
)

// Wallet validation — deterministic, caller input at fault, never retried.
var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrBelowMinimum        = errors.New("amount is below the minimum allowed")
	ErrAboveMaximum        = errors.New("amount exceeds the maximum allowed")
	ErrMissingMethod       = errors.New("payment method is required")
	ErrMissingBankDetails  = errors.New("bank name, account number and account holder are required")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDailyLimitExceeded  = errors.New("daily withdrawal limit exceeded")
)

// Approval lifecycle
var (
	ErrAlreadyProcessed = errors.New("entry already processed")
	ErrEntryNotPending  = errors.New("entry is not pending")
)

// Orders
var (
	ErrInvalidTransition = errors.New("invalid delivery status transition")
)

// ErrTransientStore marks infrastructure faults. No partial write was
// committed, so the caller may retry the whole workflow call.
var ErrTransientStore = errors.New("temporary storage failure, please try again")
