package order

import (
	"context"
	"time"

	"restaurant-orders/internal/domain"
	"github.com/shopspring/decimal"
)

// PricedItem is a catalog price snapshot resolved by the checkout engine
// just before the order transaction runs.
type PricedItem struct {
	Name  string
	Price decimal.Decimal
}

// CreateOrderInput carries everything the checkout transaction writes.
type CreateOrderInput struct {
	Customer        domain.Customer
	UserID          *string
	SessionID       *string
	Type            domain.OrderType
	DeliveryAddress string
	TableNumber     string
	PaymentMethod   string
	Notes           string
	CreatedAt       time.Time
}

type Repository interface {
	// CreateFromCart atomically drains the cart's lines, resolves them
	// against the supplied price snapshots, and materializes the order with
	// its items, the accumulated total, and the customer profile. The cart
	// row is deleted in the same transaction. Drained lines with no price
	// snapshot are skipped; if none survive the transaction rolls back with
	// domain.ErrEmptyCart and the cart is left untouched.
	CreateFromCart(ctx context.Context, cartID int64, in CreateOrderInput, prices map[domain.ItemRef]PricedItem) (*domain.Order, error)
	// GetByID loads the order with its items and customer display name.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// UpdateStatus performs a guarded status write: it succeeds only when
	// the row still holds the expected current status. It reports false
	// when the guard failed because of a concurrent transition.
	UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) (bool, error)
}
