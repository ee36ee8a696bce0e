package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"restaurant-orders/internal/catalog"
	"restaurant-orders/internal/domain"
	orderrepo "restaurant-orders/internal/repository/order"
)

type cartRepo interface {
	GetByIdentity(ctx context.Context, identity domain.Identity) (*domain.Cart, error)
}

type orderRepo interface {
	CreateFromCart(ctx context.Context, cartID int64, in orderrepo.CreateOrderInput, prices map[domain.ItemRef]orderrepo.PricedItem) (*domain.Order, error)
}

type fanout interface {
	NotifyNewOrder(order *domain.Order)
}

// Service converts a cart into a priced, typed order. The cart is advisory;
// this transaction is authoritative: prices are re-resolved from the catalog
// so a stale tab or tampered payload cannot commit outdated prices.
type Service struct {
	carts    cartRepo
	orders   orderRepo
	catalog  catalog.Gateway
	notifier fanout
	logger   *log.Logger
	now      func() time.Time
}

func New(carts cartRepo, orders orderRepo, gateway catalog.Gateway, notifier fanout, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		carts:    carts,
		orders:   orders,
		catalog:  gateway,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Input carries the checkout form fields.
type Input struct {
	OrderType     string `json:"orderType"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	TableNumber   string `json:"tableNumber"`
	PaymentMethod string `json:"paymentMethod"`
	Notes         string `json:"notes"`
}

var (
	nameRe  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	phoneRe = regexp.MustCompile(`^\+?\d{9,15}$`)
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	tableRe = regexp.MustCompile(`^[A-Za-z0-9-]{1,10}$`)
)

const maxNotesLen = 500

// Checkout validates the input, then atomically materializes an order from
// the identity's cart, freezing catalog prices onto the order items and
// clearing the cart. A NewOrder event is emitted after commit, best-effort.
func (s *Service) Checkout(ctx context.Context, identity domain.Identity, in Input) (*domain.Order, error) {
	orderType, err := validate(in)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEmptyCart
		}
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	// Prices are resolved now, at checkout time, never trusted from the
	// client or from the moment of add-to-cart. A line whose item vanished
	// since it was added is skipped, not a hard failure, unless nothing
	// survives.
	prices := make(map[domain.ItemRef]orderrepo.PricedItem, len(cart.Lines))
	for _, line := range cart.Lines {
		info, err := s.catalog.Lookup(ctx, line.Item)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Printf("checkout cart %d: skipping line %s, catalog lookup failed", cart.ID, line.Item)
				continue
			}
			return nil, err
		}
		prices[line.Item] = orderrepo.PricedItem{Name: info.Name, Price: info.UnitPrice}
	}
	if len(prices) == 0 {
		return nil, domain.ErrEmptyCart
	}

	createIn := orderrepo.CreateOrderInput{
		Customer: domain.Customer{
			FirstName: strings.TrimSpace(in.FirstName),
			LastName:  strings.TrimSpace(in.LastName),
			Phone:     strings.TrimSpace(in.Phone),
			Address:   strings.TrimSpace(in.Address),
			Email:     strings.TrimSpace(in.Email),
		},
		Type:            orderType,
		DeliveryAddress: strings.TrimSpace(in.Address),
		TableNumber:     strings.TrimSpace(in.TableNumber),
		PaymentMethod:   in.PaymentMethod,
		Notes:           in.Notes,
		CreatedAt:       s.now().UTC(),
	}
	switch identity.Kind {
	case domain.IdentityUser:
		userID := identity.Key
		createIn.UserID = &userID
	case domain.IdentitySession:
		sessionID := identity.Key
		createIn.SessionID = &sessionID
	}

	order, err := s.orders.CreateFromCart(ctx, cart.ID, createIn, prices)
	if err != nil {
		return nil, err
	}

	// Outside the transaction and fire-and-forget: a broker failure never
	// rolls back a committed order.
	if s.notifier != nil {
		s.notifier.NotifyNewOrder(order)
	}
	return order, nil
}

func validate(in Input) (domain.OrderType, error) {
	orderType := domain.OrderType(in.OrderType)
	switch orderType {
	case domain.OrderTypeDelivery:
		if len(strings.TrimSpace(in.Address)) < 10 {
			return "", domain.ValidationError{Field: "address", Reason: "delivery address must be at least 10 characters"}
		}
	case domain.OrderTypeDineIn:
		if !tableRe.MatchString(strings.TrimSpace(in.TableNumber)) {
			return "", domain.ValidationError{Field: "tableNumber", Reason: "table number must be 1-10 letters, digits, or hyphens"}
		}
	default:
		return "", domain.ValidationError{Field: "orderType", Reason: "must be delivery or dine_in"}
	}

	if err := validateName("firstName", in.FirstName); err != nil {
		return "", err
	}
	if err := validateName("lastName", in.LastName); err != nil {
		return "", err
	}
	if !phoneRe.MatchString(strings.TrimSpace(in.Phone)) {
		return "", domain.ValidationError{Field: "phone", Reason: "must be 9-15 digits with optional leading +"}
	}
	if !emailRe.MatchString(strings.TrimSpace(in.Email)) {
		return "", domain.ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	switch in.PaymentMethod {
	case "cash", "card", "wallet":
	default:
		return "", domain.ValidationError{Field: "paymentMethod", Reason: "must be cash, card, or wallet"}
	}
	if len(in.Notes) > maxNotesLen {
		return "", domain.ValidationError{Field: "notes", Reason: "cannot exceed 500 characters"}
	}
	return orderType, nil
}

func validateName(field, value string) error {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) < 2 {
		return domain.ValidationError{Field: field, Reason: "must be at least 2 characters"}
	}
	if !nameRe.MatchString(trimmed) {
		return domain.ValidationError{Field: field, Reason: "can only contain letters and spaces"}
	}
	return nil
}
