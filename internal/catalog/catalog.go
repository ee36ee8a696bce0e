package catalog

import (
	"context"

	"restaurant-orders/internal/domain"
	"github.com/shopspring/decimal"
)

// ItemInfo is the current catalog view of an item: its display name and the
// unit price a buyer would pay right now.
type ItemInfo struct {
	Name      string
	UnitPrice decimal.Decimal
}

// Gateway resolves prices and names for cart and order lines. Lookups must
// be cheap and repeatable: cart views call Lookup once per line.
type Gateway interface {
	// Lookup returns domain.ErrNotFound when the item does not resolve,
	// including promotional items that are no longer active.
	Lookup(ctx context.Context, item domain.ItemRef) (ItemInfo, error)
}

// effectivePrice applies the promotional pricing rule: a discounted price,
// when present, supersedes the list price.
func effectivePrice(list decimal.Decimal, discounted *decimal.Decimal) decimal.Decimal {
	if discounted != nil {
		return *discounted
	}
	return list
}
