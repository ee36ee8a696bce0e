package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"restaurant-orders/internal/catalog"
	"restaurant-orders/internal/domain"
	"github.com/shopspring/decimal"
)

type cartRepo interface {
	GetOrCreate(ctx context.Context, identity domain.Identity) (*domain.Cart, error)
	GetByIdentity(ctx context.Context, identity domain.Identity) (*domain.Cart, error)
	AddLine(ctx context.Context, cartID int64, item domain.ItemRef, quantity int) error
	SetLineQuantity(ctx context.Context, cartID, lineID int64, quantity int) error
	RemoveLine(ctx context.Context, cartID, lineID int64) error
	Merge(ctx context.Context, sessionToken, userID string) error
}

type tokenIssuer interface {
	Issue() string
}

// Service owns the mapping from an identity to its cart and line items.
type Service struct {
	repo     cartRepo
	catalog  catalog.Gateway
	sessions tokenIssuer
	logger   *log.Logger
}

func New(repo cartRepo, gateway catalog.Gateway, sessions tokenIssuer, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, catalog: gateway, sessions: sessions, logger: logger}
}

// GetOrCreate returns the identity's cart, creating it lazily. A session
// identity with no token yet gets one allocated first; the caller reads the
// new token back from the cart's identity key.
func (s *Service) GetOrCreate(ctx context.Context, identity domain.Identity) (*domain.Cart, error) {
	if identity.Kind == domain.IdentitySession && identity.Key == "" {
		identity.Key = s.sessions.Issue()
	}
	if identity.Key == "" {
		return nil, domain.ValidationError{Field: "identity", Reason: "identity key required"}
	}
	return s.repo.GetOrCreate(ctx, identity)
}

// Get returns the identity's existing cart or domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, identity domain.Identity) (*domain.Cart, error) {
	return s.repo.GetByIdentity(ctx, identity)
}

// MergeOnLogin folds the anonymous session cart into the user's cart,
// summing quantities for matching (kind, id) lines, then deletes the
// session cart. Running it again with the already-merged token is a no-op.
func (s *Service) MergeOnLogin(ctx context.Context, sessionToken, userID string) error {
	if sessionToken == "" || userID == "" {
		return nil
	}
	return s.repo.Merge(ctx, sessionToken, userID)
}

// AddLine adds quantity of the referenced item to the identity's cart. An
// existing line for the same (kind, id) has its quantity incremented. An
// item that does not resolve against the catalog is rejected.
func (s *Service) AddLine(ctx context.Context, identity domain.Identity, item domain.ItemRef, quantity int) (*domain.Cart, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, domain.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}

	if _, err := s.catalog.Lookup(ctx, item); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("item %s: %w", item, domain.ErrNotFound)
		}
		return nil, err
	}

	cart, err := s.GetOrCreate(ctx, identity)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddLine(ctx, cart.ID, item, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByIdentity(ctx, domain.Identity{Kind: cart.IdentityKind, Key: cart.IdentityKey})
}

// SetLineQuantity updates a line in place; a quantity of zero or less is the
// removal path, not an error.
func (s *Service) SetLineQuantity(ctx context.Context, identity domain.Identity, lineID int64, quantity int) (*domain.Cart, error) {
	cart, err := s.repo.GetByIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetLineQuantity(ctx, cart.ID, lineID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByIdentity(ctx, identity)
}

// RemoveLine deletes a line from the identity's cart.
func (s *Service) RemoveLine(ctx context.Context, identity domain.Identity, lineID int64) (*domain.Cart, error) {
	cart, err := s.repo.GetByIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveLine(ctx, cart.ID, lineID); err != nil {
		return nil, err
	}
	return s.repo.GetByIdentity(ctx, identity)
}

// Totals prices the cart against the current catalog. A line that no longer
// resolves contributes zero to the amount but is not removed: a read never
// silently mutates the cart.
func (s *Service) Totals(ctx context.Context, cart *domain.Cart) (domain.CartTotals, error) {
	totals := domain.CartTotals{Amount: decimal.Zero}
	for _, line := range cart.Lines {
		totals.ItemCount += line.Quantity
		info, err := s.catalog.Lookup(ctx, line.Item)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Printf("cart %d: line %s no longer resolves, priced as 0 for display", cart.ID, line.Item)
				continue
			}
			return domain.CartTotals{}, err
		}
		totals.Amount = totals.Amount.Add(info.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return totals, nil
}
