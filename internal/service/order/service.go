package order

import (
	"context"
	"io"
	"log"

	"restaurant-orders/internal/domain"
)

type orderRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) (bool, error)
}

type fanout interface {
	NotifyStatusChanged(order *domain.Order, oldStatus domain.OrderStatus, message string)
}

// Service governs order status transitions. It is the single code path that
// writes the status field and the single point that triggers fanout events.
type Service struct {
	repo     orderRepo
	notifier fanout
	logger   *log.Logger
}

func New(repo orderRepo, notifier fanout, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// Get loads an order snapshot.
func (s *Service) Get(ctx context.Context, orderID int64) (*domain.Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// Transition moves the order to target if the state machine allows it. The
// actor is carried so the calling layer can enforce staff-only guards; the
// state machine itself only rules on legality of the edge.
func (s *Service) Transition(ctx context.Context, orderID int64, target domain.OrderStatus, actor domain.Actor) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(order.Status, target) {
		return nil, domain.InvalidTransitionError{From: order.Status, To: target}
	}

	updated, err := s.repo.UpdateStatus(ctx, orderID, order.Status, target)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Lost a race with a concurrent transition; report against the
		// status the row holds now.
		current, err := s.repo.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return nil, domain.InvalidTransitionError{From: current.Status, To: target}
	}

	oldStatus := order.Status
	order.Status = target
	s.logger.Printf("order %d: %s -> %s (by %s)", orderID, oldStatus, target, actor)

	// After persistence, best-effort. A broker outage never fails the
	// transition.
	if s.notifier != nil {
		s.notifier.NotifyStatusChanged(order, oldStatus, "")
	}
	return order, nil
}

// CancelAsCustomer cancels an order on behalf of the identity that placed
// it. Guests prove ownership through the session the order was created
// under; authenticated users through their user id.
func (s *Service) CancelAsCustomer(ctx context.Context, orderID int64, identity domain.Identity) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ownedBy(order, identity) {
		return nil, domain.ErrNotOwner
	}
	return s.Transition(ctx, orderID, domain.StatusCancelled, domain.ActorCustomer)
}

func ownedBy(order *domain.Order, identity domain.Identity) bool {
	switch identity.Kind {
	case domain.IdentityUser:
		return order.UserID != nil && *order.UserID == identity.Key
	case domain.IdentitySession:
		return order.SessionID != nil && *order.SessionID == identity.Key
	default:
		return false
	}
}
