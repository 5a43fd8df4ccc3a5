package domain

import "time"

// DepositRequest is a seller's request to add funds to their wallet.
type DepositRequest struct {
	SellerID   int64
	Amount     int64
	Method     string
	Details    string
	ReceiptRef *string
}

// DepositResult reports the outcome of an accepted deposit. Offline methods
// queue for manual review; Approved is false and NewBalance is the balance
// before review.
type DepositResult struct {
	EntryID       int64  `json:"entry_id"`
	ReferenceCode string `json:"reference_code"`
	Approved      bool   `json:"approved"`
	NewBalance    int64  `json:"new_balance"`
}

// WithdrawRequest is a seller's request to move funds out of the platform.
// Bank details are required only for bank-style payout methods.
type WithdrawRequest struct {
	SellerID    int64
	Amount      int64
	Method      string
	BankName    string
	BankAccount string
	BankHolder  string
	Note        string
}

// WithdrawResult acknowledges a queued withdrawal request. The balance is
// untouched until an operator approves the entry.
type WithdrawResult struct {
	EntryID       int64  `json:"entry_id"`
	ReferenceCode string `json:"reference_code"`
	Balance       int64  `json:"balance"`
	UsedToday     int64  `json:"used_today"`
}

// WithdrawStats is the daily-cap view shown on the withdraw page.
type WithdrawStats struct {
	SellerID   int64     `json:"seller_id"`
	UsedToday  int64     `json:"used_today"`
	DailyLimit int64     `json:"daily_limit"`
	Remaining  int64     `json:"remaining"`
	Day        time.Time `json:"day"`
}

// WalletOverview is the dashboard read model: current balance, lifetime
// approved totals, and the most recent ledger entries. The totals come from
// the ledger, so balance == TotalDeposited - TotalWithdrawn holds as a
// reconciliation check.
type WalletOverview struct {
	SellerID       int64          `json:"seller_id"`
	Balance        int64          `json:"balance"`
	TotalDeposited int64          `json:"total_deposited"`
	TotalWithdrawn int64          `json:"total_withdrawn"`
	Entries        []*LedgerEntry `json:"entries"`
}
