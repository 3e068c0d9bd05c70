package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentkart/rentkart-backend/api/middleware"
	cartsvc "github.com/rentkart/rentkart-backend/internal/cart"
	"github.com/rentkart/rentkart-backend/internal/delivery"
	"github.com/rentkart/rentkart-backend/pkg/db/models"
)

type stubCartService struct {
	cart *models.Cart
	item *models.CartItem
	err  error
}

func (s stubCartService) AddToCart(ctx context.Context, input cartsvc.AddInput) (*models.CartItem, error) {
	return s.item, s.err
}

func (s stubCartService) UpdateQuantity(ctx context.Context, customerID, itemID uuid.UUID, quantity int) error {
	return s.err
}

func (s stubCartService) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) error {
	return s.err
}

func (s stubCartService) GetCart(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	return s.cart, s.err
}

type stubCalculator struct {
	result *delivery.Result
	groups []delivery.VendorGroup
	err    error
}

func (s *stubCalculator) ComputeDeliveryCharges(ctx context.Context, groups []delivery.VendorGroup, destination string) (*delivery.Result, error) {
	s.groups = groups
	return s.result, s.err
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
}

func TestCartFetchSuccess(t *testing.T) {
	cart := &models.Cart{ID: uuid.New()}
	handler := CartFetch(stubCartService{cart: cart}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data models.Cart `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != cart.ID {
		t.Fatalf("unexpected cart id: %s", envelope.Data.ID)
	}
}

func TestCartFetchMissingUserContext(t *testing.T) {
	handler := CartFetch(stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddItemRejectsInvalidBody(t *testing.T) {
	handler := CartAddItem(stubCartService{}, nil)

	// quantity missing
	body := `{"variant_id":"` + uuid.NewString() + `","rental_start":"2026-09-01T00:00:00Z","rental_end":"2026-09-03T00:00:00Z"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddItemSuccess(t *testing.T) {
	item := &models.CartItem{ID: uuid.New(), Quantity: 2}
	handler := CartAddItem(stubCartService{item: item}, nil)

	body := `{"variant_id":"` + uuid.NewString() + `","quantity":2,"rental_start":"2026-09-01T00:00:00Z","rental_end":"2026-09-03T00:00:00Z"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
}

func TestCartDeliveryQuoteRejectsEmptyCart(t *testing.T) {
	handler := CartDeliveryQuote(stubCartService{cart: &models.Cart{ID: uuid.New()}}, &stubCalculator{}, nil)

	body := `{"delivery_address":"1 Harbor Way, Rotterdam"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/delivery-charges", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartDeliveryQuoteGroupsPerVendor(t *testing.T) {
	vendorA := uuid.New()
	vendorB := uuid.New()
	cart := &models.Cart{
		ID: uuid.New(),
		Items: []models.CartItem{
			{VendorID: vendorA, Quantity: 1, UnitPrice: decimal.RequireFromString("100")},
			{VendorID: vendorB, Quantity: 2, UnitPrice: decimal.RequireFromString("50")},
			{VendorID: vendorA, Quantity: 1, UnitPrice: decimal.RequireFromString("25")},
		},
	}
	calc := &stubCalculator{result: &delivery.Result{}}
	handler := CartDeliveryQuote(stubCartService{cart: cart}, calc, nil)

	body := `{"delivery_address":"1 Harbor Way, Rotterdam"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/cart/delivery-charges", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(calc.groups) != 2 {
		t.Fatalf("expected 2 vendor groups got %d", len(calc.groups))
	}
	if calc.groups[0].VendorID != vendorA || !calc.groups[0].Subtotal.Equal(decimal.RequireFromString("125")) {
		t.Fatalf("unexpected first group: %s %s", calc.groups[0].VendorID, calc.groups[0].Subtotal)
	}
	if calc.groups[1].VendorID != vendorB || !calc.groups[1].Subtotal.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("unexpected second group: %s %s", calc.groups[1].VendorID, calc.groups[1].Subtotal)
	}
}
