package cart

import (
	"context"

	"restaurant-orders/internal/domain"
)

type Repository interface {
	// GetOrCreate returns the cart owned by identity, creating it lazily.
	GetOrCreate(ctx context.Context, identity domain.Identity) (*domain.Cart, error)
	// GetByIdentity returns domain.ErrNotFound when no cart exists yet.
	GetByIdentity(ctx context.Context, identity domain.Identity) (*domain.Cart, error)
	// AddLine upserts a line: an existing (kind, id) line has its quantity
	// incremented instead of a duplicate row being created.
	AddLine(ctx context.Context, cartID int64, item domain.ItemRef, quantity int) error
	// SetLineQuantity updates in place; quantity <= 0 deletes the line.
	SetLineQuantity(ctx context.Context, cartID, lineID int64, quantity int) error
	RemoveLine(ctx context.Context, cartID, lineID int64) error
	// Merge folds the session cart into the user cart and deletes the
	// session cart. A missing session cart is a no-op, so duplicate
	// invocations are safe.
	Merge(ctx context.Context, sessionToken, userID string) error
}
