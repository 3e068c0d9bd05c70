package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart-backend/internal/pricing"
	"github.com/rentkart/rentkart-backend/pkg/db/models"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
)

// VariantSource resolves a variant and its owning product.
type VariantSource interface {
	FindVariantByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
}

// Service owns the customer cart lifecycle up to quotation submission.
type Service interface {
	AddToCart(ctx context.Context, input AddInput) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, customerID, itemID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) error
	GetCart(ctx context.Context, customerID uuid.UUID) (*models.Cart, error)
}

// AddInput captures an add-to-cart request.
type AddInput struct {
	CustomerID  uuid.UUID
	VariantID   uuid.UUID
	Quantity    int
	RentalStart time.Time
	RentalEnd   time.Time
}

type service struct {
	repo     Repository
	variants VariantSource
	pricer   pricing.Service
}

// NewService builds the cart service.
func NewService(repo Repository, variants VariantSource, pricer pricing.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if variants == nil {
		return nil, fmt.Errorf("variant source required")
	}
	if pricer == nil {
		return nil, fmt.Errorf("pricer required")
	}
	return &service{
		repo:     repo,
		variants: variants,
		pricer:   pricer,
	}, nil
}

// AddToCart prices the requested interval and merges the line into the
// customer's cart. The computed unit price is frozen on the row and
// never recomputed on read.
func (s *service) AddToCart(ctx context.Context, input AddInput) (*models.CartItem, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	if input.VariantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if !input.RentalEnd.After(input.RentalStart) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental end must be after rental start")
	}

	variant, err := s.variants.FindVariantByID(ctx, input.VariantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	if variant.Product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "variant has no owning product")
	}

	unitPrice, err := s.pricer.ComputeRentalPrice(ctx, input.VariantID, input.RentalStart, input.RentalEnd)
	if err != nil {
		return nil, err
	}
	if unitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "variant has no applicable rental rate")
	}

	cart, err := s.repo.FindOrCreateByCustomer(ctx, input.CustomerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	item := &models.CartItem{
		ID:          uuid.New(),
		CartID:      cart.ID,
		VariantID:   input.VariantID,
		VendorID:    variant.Product.VendorID,
		Quantity:    input.Quantity,
		RentalStart: input.RentalStart.UTC(),
		RentalEnd:   input.RentalEnd.UTC(),
		UnitPrice:   unitPrice,
	}
	if err := s.repo.UpsertItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert cart item")
	}
	return item, nil
}

func (s *service) UpdateQuantity(ctx context.Context, customerID, itemID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if _, err := s.ownedItem(ctx, customerID, itemID); err != nil {
		return err
	}
	if err := s.repo.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	return nil
}

func (s *service) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) error {
	if _, err := s.ownedItem(ctx, customerID, itemID); err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	return nil
}

func (s *service) GetCart(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// An untouched cart reads as empty, not missing.
			return &models.Cart{CustomerID: customerID, Items: []models.CartItem{}}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) ownedItem(ctx context.Context, customerID, itemID uuid.UUID) (*models.CartItem, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item id required")
	}

	item, err := s.repo.FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	cart, err := s.repo.FindOrCreateByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if item.CartID != cart.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart item does not belong to customer")
	}
	return item, nil
}
