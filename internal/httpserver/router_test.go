package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"restaurant-orders/internal/catalog"
	"restaurant-orders/internal/domain"
	orderrepo "restaurant-orders/internal/repository/order"
	cartsvc "restaurant-orders/internal/service/cart"
	checkoutsvc "restaurant-orders/internal/service/checkout"
	ordersvc "restaurant-orders/internal/service/order"
	sessionsvc "restaurant-orders/internal/service/session"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type stubCartRepo struct {
	cart       *domain.Cart
	mergeCalls int
	lastToken  string
	lastUser   string
}

func (s *stubCartRepo) GetOrCreate(_ context.Context, identity domain.Identity) (*domain.Cart, error) {
	if s.cart == nil {
		return &domain.Cart{ID: 1, IdentityKind: identity.Kind, IdentityKey: identity.Key}, nil
	}
	return s.cart, nil
}

func (s *stubCartRepo) GetByIdentity(_ context.Context, _ domain.Identity) (*domain.Cart, error) {
	if s.cart == nil {
		return nil, domain.ErrNotFound
	}
	return s.cart, nil
}

func (s *stubCartRepo) AddLine(_ context.Context, _ int64, _ domain.ItemRef, _ int) error {
	return nil
}

func (s *stubCartRepo) SetLineQuantity(_ context.Context, _, _ int64, _ int) error {
	return nil
}

func (s *stubCartRepo) RemoveLine(_ context.Context, _, _ int64) error {
	return nil
}

func (s *stubCartRepo) Merge(_ context.Context, sessionToken, userID string) error {
	s.mergeCalls++
	s.lastToken = sessionToken
	s.lastUser = userID
	return nil
}

type stubGateway struct{}

func (stubGateway) Lookup(_ context.Context, _ domain.ItemRef) (catalog.ItemInfo, error) {
	return catalog.ItemInfo{Name: "Margherita Pizza", UnitPrice: decimal.RequireFromString("150.00")}, nil
}

type stubOrderRepo struct {
	order *domain.Order
}

func (s *stubOrderRepo) GetByID(_ context.Context, _ int64) (*domain.Order, error) {
	if s.order == nil {
		return nil, domain.ErrNotFound
	}
	copied := *s.order
	return &copied, nil
}

func (s *stubOrderRepo) UpdateStatus(_ context.Context, _ int64, _, to domain.OrderStatus) (bool, error) {
	s.order.Status = to
	return true, nil
}

func (s *stubOrderRepo) CreateFromCart(_ context.Context, _ int64, _ orderrepo.CreateOrderInput, _ map[domain.ItemRef]orderrepo.PricedItem) (*domain.Order, error) {
	s.order = &domain.Order{ID: 99, Status: domain.StatusPending}
	return s.order, nil
}

func testRouter(cartRepo *stubCartRepo, orderRepo *stubOrderRepo) (*gin.Engine, *sessionsvc.Service) {
	gin.SetMode(gin.TestMode)
	logger := log.New(io.Discard, "", 0)
	sessions := sessionsvc.New()
	deps := Deps{
		CartSvc:     cartsvc.New(cartRepo, stubGateway{}, sessions, logger),
		CheckoutSvc: checkoutsvc.New(cartRepo, orderRepo, stubGateway{}, nil, logger),
		OrderSvc:    ordersvc.New(orderRepo, nil, logger),
		Sessions:    sessions,
	}
	return buildRouter(logger, nil, deps), sessions
}

func TestIdentityMiddleware_IssuesSessionToken(t *testing.T) {
	router, sessions := testRouter(&stubCartRepo{}, &stubOrderRepo{})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	token := rec.Header().Get(headerSessionToken)
	if token == "" {
		t.Fatal("expected a session token header on first contact")
	}
	if !sessions.Validate(token) {
		t.Fatal("issued token must validate")
	}

	var cookieSet bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookie && cookie.Value == token {
			cookieSet = true
		}
	}
	if !cookieSet {
		t.Fatal("expected session cookie matching issued token")
	}
}

func TestIdentityMiddleware_RejectsUnknownToken(t *testing.T) {
	router, sessions := testRouter(&stubCartRepo{}, &stubOrderRepo{})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(headerSessionToken, "forged-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	issued := rec.Header().Get(headerSessionToken)
	if issued == "" || issued == "forged-token" {
		t.Fatalf("expected a fresh token in place of the forged one, got %q", issued)
	}
	if !sessions.Validate(issued) {
		t.Fatal("replacement token must validate")
	}
}

func TestIdentityMiddleware_MergesOnLogin(t *testing.T) {
	repo := &stubCartRepo{}
	router, sessions := testRouter(repo, &stubOrderRepo{})
	token := sessions.Issue()

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(headerSessionToken, token)
	req.Header.Set(headerUserID, "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if repo.mergeCalls != 1 {
		t.Fatalf("expected one merge call, got %d", repo.mergeCalls)
	}
	if repo.lastToken != token || repo.lastUser != "u1" {
		t.Fatalf("expected merge(%q, u1), got (%q, %q)", token, repo.lastToken, repo.lastUser)
	}
}

func TestIdentityMiddleware_UserWithoutSessionSkipsMerge(t *testing.T) {
	repo := &stubCartRepo{}
	router, _ := testRouter(repo, &stubOrderRepo{})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(headerUserID, "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if repo.mergeCalls != 0 {
		t.Fatalf("expected no merge without a session token, got %d", repo.mergeCalls)
	}
	if rec.Header().Get(headerSessionToken) != "" {
		t.Fatal("authenticated request must not be issued a session token")
	}
}

func TestStatusRoute_RequiresStaffHeader(t *testing.T) {
	orderRepo := &stubOrderRepo{order: &domain.Order{ID: 1, Status: domain.StatusPending}}
	router, _ := testRouter(&stubCartRepo{}, orderRepo)

	body := strings.NewReader(`{"status":"confirmed"}`)
	req := httptest.NewRequest(http.MethodPost, "/orders/1/status", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestStatusRoute_StaffTransition(t *testing.T) {
	orderRepo := &stubOrderRepo{order: &domain.Order{ID: 1, Status: domain.StatusPending}}
	router, _ := testRouter(&stubCartRepo{}, orderRepo)

	body := strings.NewReader(`{"status":"confirmed"}`)
	req := httptest.NewRequest(http.MethodPost, "/orders/1/status", body)
	req.Header.Set(headerStaffID, "staff-7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if orderRepo.order.Status != domain.StatusConfirmed {
		t.Fatalf("expected order confirmed, got %s", orderRepo.order.Status)
	}
}

func TestCancelRoute_OwnershipEnforced(t *testing.T) {
	userID := "u1"
	orderRepo := &stubOrderRepo{order: &domain.Order{ID: 1, Status: domain.StatusPending, UserID: &userID}}
	router, _ := testRouter(&stubCartRepo{}, orderRepo)

	req := httptest.NewRequest(http.MethodPost, "/orders/1/cancel", nil)
	req.Header.Set(headerUserID, "someone-else")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestCancelRoute_OwnerCancels(t *testing.T) {
	userID := "u1"
	orderRepo := &stubOrderRepo{order: &domain.Order{ID: 1, Status: domain.StatusPending, UserID: &userID}}
	router, _ := testRouter(&stubCartRepo{}, orderRepo)

	req := httptest.NewRequest(http.MethodPost, "/orders/1/cancel", nil)
	req.Header.Set(headerUserID, "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if orderRepo.order.Status != domain.StatusCancelled {
		t.Fatalf("expected order cancelled, got %s", orderRepo.order.Status)
	}
	if !strings.Contains(rec.Body.String(), `"terminal":true`) {
		t.Fatalf("expected terminal flag in response, got %s", rec.Body.String())
	}
}

func TestCheckoutRoute_EmptyCart(t *testing.T) {
	router, _ := testRouter(&stubCartRepo{}, &stubOrderRepo{})

	body := strings.NewReader(`{
		"orderType": "dine_in",
		"firstName": "Maria",
		"lastName": "Petrova",
		"phone": "+359888123456",
		"email": "maria@example.com",
		"tableNumber": "T-05",
		"paymentMethod": "card"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/checkout", body)
	req.Header.Set(headerUserID, "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"empty_cart"`) {
		t.Fatalf("expected empty_cart code, got %s", rec.Body.String())
	}
}

func TestCheckoutRoute_CreatesOrder(t *testing.T) {
	cartRepo := &stubCartRepo{cart: &domain.Cart{ID: 1, Lines: []domain.CartLine{
		{ID: 1, CartID: 1, Item: domain.ItemRef{Kind: domain.ItemKindRegular, ID: 7}, Quantity: 2},
	}}}
	orderRepo := &stubOrderRepo{}
	router, _ := testRouter(cartRepo, orderRepo)

	body := strings.NewReader(`{
		"orderType": "dine_in",
		"firstName": "Maria",
		"lastName": "Petrova",
		"phone": "+359888123456",
		"email": "maria@example.com",
		"tableNumber": "T-05",
		"paymentMethod": "card"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/checkout", body)
	req.Header.Set(headerUserID, "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if orderRepo.order == nil || orderRepo.order.ID != 99 {
		t.Fatalf("expected order created through the repo, got %+v", orderRepo.order)
	}
}
