package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypeDineIn   OrderType = "dine_in"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// allowedTransitions is the full state machine:
// pending -> confirmed -> preparing -> ready -> completed, with cancellation
// possible until the order is ready for hand-off.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusCompleted},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func IsTerminal(s OrderStatus) bool {
	return len(allowedTransitions[s]) == 0
}

// ParseOrderStatus validates a client-supplied status string.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return OrderStatus(s), true
	default:
		return "", false
	}
}

// Actor identifies who requested a status transition so the calling layer
// can enforce staff-only guards.
type Actor string

const (
	ActorStaff    Actor = "staff"
	ActorCustomer Actor = "customer"
)

// Order is the immutable-once-created transaction record. After creation the
// status field is the only mutable surface, and only through the order
// service's transition operation.
type Order struct {
	ID              int64           `json:"id"`
	CustomerID      *int64          `json:"customerId,omitempty"`
	UserID          *string         `json:"userId,omitempty"`
	SessionID       *string         `json:"-"`
	Type            OrderType       `json:"orderType"`
	Status          OrderStatus     `json:"status"`
	Total           decimal.Decimal `json:"total"`
	DeliveryAddress string          `json:"deliveryAddress,omitempty"`
	TableNumber     string          `json:"tableNumber,omitempty"`
	PaymentMethod   string          `json:"paymentMethod"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	Items           []OrderItem     `json:"items,omitempty"`

	// CustomerName is denormalized onto snapshots for notification payloads.
	CustomerName string `json:"customerName,omitempty"`
}

// OrderItem freezes the unit price at order-creation time. Price is never
// null: a line whose catalog lookup fails at creation is rejected, not
// zeroed.
type OrderItem struct {
	ID       int64           `json:"id"`
	OrderID  int64           `json:"orderId"`
	Item     ItemRef         `json:"item"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
