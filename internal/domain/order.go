package domain

import "time"

// DeliveryStatus is the seller-facing fulfillment stage of an order,
// distinct from payment status.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryConfirmed DeliveryStatus = "confirmed"
	DeliveryShipping  DeliveryStatus = "shipping"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryCancelled DeliveryStatus = "cancelled"
)

var validNext = map[DeliveryStatus]map[DeliveryStatus]bool{
	DeliveryPending:   {DeliveryConfirmed: true, DeliveryCancelled: true},
	DeliveryConfirmed: {DeliveryShipping: true, DeliveryCancelled: true},
	DeliveryShipping:  {DeliveryDelivered: true},
	DeliveryDelivered: {},
	DeliveryCancelled: {},
}

// CanTransition reports whether to is a direct successor of from. Terminal
// states (delivered, cancelled) have no successors.
func CanTransition(from, to DeliveryStatus) bool {
	return validNext[from][to]
}

// IsValidDeliveryStatus reports whether s names a known stage.
func IsValidDeliveryStatus(s DeliveryStatus) bool {
	_, ok := validNext[s]
	return ok
}

type Order struct {
	ID             string         `json:"id"`
	SellerID       int64          `json:"seller_id"`
	CustomerID     int64          `json:"customer_id"`
	GrandTotal     int64          `json:"grand_total"`
	DeliveryStatus DeliveryStatus `json:"delivery_status"`
	PaymentStatus  string         `json:"payment_status"`
	TrackingCode   *string        `json:"tracking_code,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// OrderItem mirrors its parent order's delivery status; items carry no
// independent fulfillment state.
type OrderItem struct {
	ID             int64          `json:"id"`
	OrderID        string         `json:"order_id"`
	ProductID      int64          `json:"product_id"`
	Qty            int            `json:"qty"`
	Price          int64          `json:"price"`
	DeliveryStatus DeliveryStatus `json:"delivery_status"`
}
