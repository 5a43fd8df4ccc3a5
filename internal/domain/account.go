package domain

import "time"

// SellerAccount is a seller's wallet row. Balance is kept in minor currency
// units and equals the sum of all approved ledger entries for the seller.
type SellerAccount struct {
	ID          int64     `json:"id"`
	DisplayName string    `json:"display_name"`
	Balance     int64     `json:"balance"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Identity is the authenticated seller supplied by the gateway. It is passed
// explicitly into every workflow call; the core never reads ambient session
// state.
type Identity struct {
	SellerID    int64  `json:"seller_id"`
	DisplayName string `json:"display_name"`
}

// Operator is an authenticated back-office reviewer. Operators resolve
// pending ledger entries; sellers never do, not even their own.
type Operator struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
}
