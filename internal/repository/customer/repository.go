package customer

import (
	"context"

	"restaurant-orders/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Repository resolves customer profiles. Resolution runs inside the caller's
// transaction so profile creation commits or rolls back together with the
// order that references it.
type Repository interface {
	// ResolveInTx reuses the existing profile for a known phone number or
	// creates one from the submitted fields. Existing profiles are not
	// updated by repeat checkouts.
	ResolveInTx(ctx context.Context, tx pgx.Tx, c domain.Customer) (*domain.Customer, error)
}
