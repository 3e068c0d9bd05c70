package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart-backend/pkg/db/models"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
)

type stubCartRepo struct {
	cart     *models.Cart
	upserted []*models.CartItem
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCartRepo) FindOrCreateByCustomer(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	if s.cart == nil {
		s.cart = &models.Cart{ID: uuid.New(), CustomerID: customerID}
	}
	return s.cart, nil
}

func (s *stubCartRepo) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	if s.cart == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.cart, nil
}

func (s *stubCartRepo) UpsertItem(ctx context.Context, item *models.CartItem) error {
	s.upserted = append(s.upserted, item)
	return nil
}

func (s *stubCartRepo) FindItemByID(ctx context.Context, itemID uuid.UUID) (*models.CartItem, error) {
	for _, item := range s.upserted {
		if item.ID == itemID {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) FindItemsByCart(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	out := make([]models.CartItem, 0, len(s.upserted))
	for _, item := range s.upserted {
		out = append(out, *item)
	}
	return out, nil
}

func (s *stubCartRepo) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return nil
}

func (s *stubCartRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error { return nil }

func (s *stubCartRepo) DeleteItemsByCart(ctx context.Context, cartID uuid.UUID) error { return nil }

type stubVariantSource struct {
	variant *models.ProductVariant
	err     error
}

func (s *stubVariantSource) FindVariantByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.variant, nil
}

type stubPricer struct {
	price decimal.Decimal
	err   error
}

func (s *stubPricer) ComputeRentalPrice(ctx context.Context, variantID uuid.UUID, rentalStart, rentalEnd time.Time) (decimal.Decimal, error) {
	return s.price, s.err
}

func testVariant() *models.ProductVariant {
	return &models.ProductVariant{
		ID:      uuid.New(),
		Product: &models.Product{ID: uuid.New(), VendorID: uuid.New()},
	}
}

func addInput(customerID uuid.UUID) AddInput {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return AddInput{
		CustomerID:  customerID,
		VariantID:   uuid.New(),
		Quantity:    1,
		RentalStart: start,
		RentalEnd:   start.Add(48 * time.Hour),
	}
}

func TestAddToCartFreezesComputedPrice(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	svc, err := NewService(repo, &stubVariantSource{variant: testVariant()}, &stubPricer{price: decimal.RequireFromString("400")})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	item, err := svc.AddToCart(context.Background(), addInput(uuid.New()))
	if err != nil {
		t.Fatalf("add to cart: %v", err)
	}
	if !item.UnitPrice.Equal(decimal.RequireFromString("400")) {
		t.Fatalf("expected frozen price 400, got %s", item.UnitPrice)
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected one upsert, got %d", len(repo.upserted))
	}
}

func TestAddToCartRejectsInvalidDateRange(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	svc, err := NewService(repo, &stubVariantSource{variant: testVariant()}, &stubPricer{price: decimal.RequireFromString("400")})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	input := addInput(uuid.New())
	input.RentalEnd = input.RentalStart

	_, err = svc.AddToCart(context.Background(), input)
	if err == nil {
		t.Fatal("expected invalid date range error")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.upserted) != 0 {
		t.Fatal("no cart item should be created on validation failure")
	}
}

func TestAddToCartRejectsUnpriceableVariant(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	svc, err := NewService(repo, &stubVariantSource{variant: testVariant()}, &stubPricer{price: decimal.Zero})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.AddToCart(context.Background(), addInput(uuid.New()))
	if err == nil {
		t.Fatal("expected unpriceable variant error")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestAddToCartRejectsZeroQuantity(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubCartRepo{}, &stubVariantSource{variant: testVariant()}, &stubPricer{price: decimal.RequireFromString("400")})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	input := addInput(uuid.New())
	input.Quantity = 0

	if _, err := svc.AddToCart(context.Background(), input); err == nil {
		t.Fatal("expected quantity validation error")
	}
}

func TestAddToCartMissingVariant(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubCartRepo{}, &stubVariantSource{err: gorm.ErrRecordNotFound}, &stubPricer{price: decimal.RequireFromString("400")})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.AddToCart(context.Background(), addInput(uuid.New()))
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetCartEmptyWhenNeverTouched(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubCartRepo{}, &stubVariantSource{variant: testVariant()}, &stubPricer{price: decimal.RequireFromString("400")})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	cart, err := svc.GetCart(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(cart.Items))
	}
}
