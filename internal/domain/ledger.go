package domain

import (
	"strings"
	"time"
)

// ApprovalStatus controls whether a ledger entry counts toward the balance.
type ApprovalStatus int16

const (
	ApprovalRejected ApprovalStatus = -1
	ApprovalPending  ApprovalStatus = 0
	ApprovalApproved ApprovalStatus = 1
)

func (s ApprovalStatus) String() string {
	switch s {
	case ApprovalRejected:
		return "rejected"
	case ApprovalPending:
		return "pending"
	case ApprovalApproved:
		return "approved"
	default:
		return "unknown"
	}
}

// EntrySign selects deposits or withdrawals in ledger queries.
type EntrySign int

const (
	SignAny      EntrySign = 0
	SignPositive EntrySign = 1 // deposits
	SignNegative EntrySign = -1 // withdrawals
)

// LedgerEntry is a balance-affecting transaction. Amount is signed: positive
// for deposits, negative for withdrawals. Once approved the entry is
// immutable and already reflected in the seller balance exactly once.
type LedgerEntry struct {
	ID             int64          `json:"id"`
	SellerID       int64          `json:"seller_id"`
	Amount         int64          `json:"amount"`
	Method         string         `json:"method"`
	Details        string         `json:"details,omitempty"`
	Approval       ApprovalStatus `json:"approval"`
	RequiresReview bool           `json:"requires_review"`
	ReceiptRef     *string        `json:"receipt_ref,omitempty"`
	ReferenceCode  string         `json:"reference_code"`
	BankName       *string        `json:"bank_name,omitempty"`
	BankAccount    *string        `json:"bank_account,omitempty"`
	BankHolder     *string        `json:"bank_holder,omitempty"`
	Note           *string        `json:"note,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	ApprovedAt     *time.Time     `json:"approved_at,omitempty"`
}

// IsDeposit reports whether the entry adds funds.
func (e *LedgerEntry) IsDeposit() bool { return e.Amount > 0 }

// LedgerFilter narrows ListBySeller results. Nil fields are skipped; the
// repository builds a parameterized query from the set fields.
type LedgerFilter struct {
	Approval *ApprovalStatus
	Sign     EntrySign
	Since    *time.Time
	Limit    int
	Offset   int
}

// Offline payment methods settle outside the platform and need a human to
// verify proof of payment before funds move.
const (
	MethodBankTransfer = "bank_transfer"
	MethodManual       = "manual"
)

// IsOfflineMethod reports whether a deposit via this method must queue for
// manual review instead of approving immediately.
func IsOfflineMethod(method string) bool {
	if method == MethodBankTransfer || method == MethodManual {
		return true
	}
	return strings.HasPrefix(method, "manual_")
}

// IsBankStyleMethod reports whether a withdrawal via this method pays out to
// a bank account and therefore requires full payout target details.
func IsBankStyleMethod(method string) bool {
	return method == MethodBankTransfer || strings.HasPrefix(method, "bank")
}
