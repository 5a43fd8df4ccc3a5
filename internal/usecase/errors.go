package usecase

import (
	"errors"

	"github.com/tychicus04/web-ban-den-sub006/pkg/xerrors"
)

// workflowErrors are the deterministic, caller-facing rejections. Anything
// else escaping a transaction is an infrastructure fault and is reported as
// a retryable transient error instead.
var workflowErrors = []error{
	xerrors.ErrInvalidAmount,
	xerrors.ErrBelowMinimum,
	xerrors.ErrAboveMaximum,
	xerrors.ErrMissingMethod,
	xerrors.ErrMissingBankDetails,
	xerrors.ErrInsufficientBalance,
	xerrors.ErrDailyLimitExceeded,
	xerrors.ErrInvalidTransition,
	xerrors.ErrNotFound,
	xerrors.ErrAlreadyProcessed,
	xerrors.ErrEntryNotPending,
	xerrors.ErrInvalidRequest,
}

func isWorkflowError(err error) bool {
	for _, w := range workflowErrors {
		if errors.Is(err, w) {
			return true
		}
	}
	return false
}
