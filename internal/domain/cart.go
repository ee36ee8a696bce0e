package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID           int64        `json:"id"`
	IdentityKind IdentityKind `json:"-"`
	IdentityKey  string       `json:"-"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Lines        []CartLine   `json:"lines"`
}

// CartLine holds one (item kind, item id) entry. Unit price is not stored;
// it is resolved from the catalog on read so cart totals track current
// prices until checkout freezes them.
type CartLine struct {
	ID       int64    `json:"id"`
	CartID   int64    `json:"cartId"`
	Item     ItemRef  `json:"item"`
	Quantity int      `json:"quantity"`
}

// CartTotals is the display summary for a cart. Lines whose catalog lookup
// fails contribute zero to Amount but stay in the cart.
type CartTotals struct {
	ItemCount int             `json:"itemCount"`
	Amount    decimal.Decimal `json:"amount"`
}
