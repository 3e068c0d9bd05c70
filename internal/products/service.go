package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart-backend/pkg/db"
	"github.com/rentkart/rentkart-backend/pkg/db/models"
	"github.com/rentkart/rentkart-backend/pkg/enums"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
)

// Service manages the rentable catalog: products, variants, rental
// periods, and per-period rates.
type Service interface {
	Browse(ctx context.Context, input ListInput) ([]models.Product, string, error)
	ListForVendor(ctx context.Context, vendorID uuid.UUID, input ListInput) ([]models.Product, string, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, vendorID uuid.UUID, input CreateInput) (*models.Product, error)
	Update(ctx context.Context, vendorID, productID uuid.UUID, input UpdateInput) (*models.Product, error)
	Delete(ctx context.Context, vendorID, productID uuid.UUID) error
	AddVariant(ctx context.Context, vendorID, productID uuid.UUID, input VariantInput) (*models.ProductVariant, error)
	SetRentalPrice(ctx context.Context, vendorID, variantID, periodID uuid.UUID, price decimal.Decimal) error
	CreatePeriod(ctx context.Context, input PeriodInput) (*models.RentalPeriod, error)
	ListPeriods(ctx context.Context) ([]models.RentalPeriod, error)
}

// CreateInput captures a new catalog entry with its initial variants.
type CreateInput struct {
	Name        string
	Description *string
	Category    string
	Published   bool
	Variants    []VariantInput
}

// UpdateInput carries partial product updates.
type UpdateInput struct {
	Name        *string
	Description *string
	Category    *string
	Published   *bool
}

// VariantInput captures one rentable configuration.
type VariantInput struct {
	SKU      string
	Name     string
	StockQty int
}

// PeriodInput captures an admin-defined billing unit.
type PeriodInput struct {
	Duration int
	Unit     enums.RentalUnit
	Active   bool
}

type service struct {
	repo Repository
}

// NewService builds the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

// Browse is the public catalog listing; it only ever exposes published
// products regardless of the caller-supplied filters.
func (s *service) Browse(ctx context.Context, input ListInput) ([]models.Product, string, error) {
	published := true
	input.Filters.Published = &published

	rows, next, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, next, nil
}

func (s *service) ListForVendor(ctx context.Context, vendorID uuid.UUID, input ListInput) ([]models.Product, string, error) {
	if vendorID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "vendor identity missing")
	}
	input.Filters.VendorID = &vendorID

	rows, next, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, next, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) Create(ctx context.Context, vendorID uuid.UUID, input CreateInput) (*models.Product, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "vendor identity missing")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}

	product := &models.Product{
		ID:          uuid.New(),
		VendorID:    vendorID,
		Name:        name,
		Description: input.Description,
		Category:    strings.TrimSpace(input.Category),
		Published:   input.Published,
	}
	for _, v := range input.Variants {
		variant, err := buildVariant(product.ID, v)
		if err != nil {
			return nil, err
		}
		product.Variants = append(product.Variants, *variant)
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "variant sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, vendorID, productID uuid.UUID, input UpdateInput) (*models.Product, error) {
	product, err := s.ownedProduct(ctx, vendorID, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Published != nil {
		product.Published = *input.Published
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, vendorID, productID uuid.UUID) error {
	if _, err := s.ownedProduct(ctx, vendorID, productID); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) AddVariant(ctx context.Context, vendorID, productID uuid.UUID, input VariantInput) (*models.ProductVariant, error) {
	if _, err := s.ownedProduct(ctx, vendorID, productID); err != nil {
		return nil, err
	}

	variant, err := buildVariant(productID, input)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.CreateVariant(ctx, variant)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "variant sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create variant")
	}
	return created, nil
}

// SetRentalPrice writes the rate a variant bills for one period. An
// existing rate for the same pair is overwritten.
func (s *service) SetRentalPrice(ctx context.Context, vendorID, variantID, periodID uuid.UUID, price decimal.Decimal) error {
	if variantID == uuid.Nil || periodID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "variant id and period id required")
	}
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	variant, err := s.repo.FindVariantByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	if variant.Product == nil || variant.Product.VendorID != vendorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "variant does not belong to vendor")
	}

	if _, err := s.repo.FindPeriodByID(ctx, periodID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "rental period not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rental period")
	}

	rate := &models.RentalPrice{
		ID:        uuid.New(),
		VariantID: variantID,
		PeriodID:  periodID,
		Price:     price.Round(2),
	}
	if err := s.repo.UpsertRentalPrice(ctx, rate); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set rental price")
	}
	return nil
}

func (s *service) CreatePeriod(ctx context.Context, input PeriodInput) (*models.RentalPeriod, error) {
	if input.Duration < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration must be at least 1")
	}
	if !input.Unit.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid rental unit")
	}

	period := &models.RentalPeriod{
		ID:       uuid.New(),
		Duration: input.Duration,
		Unit:     input.Unit,
		Active:   input.Active,
	}
	created, err := s.repo.CreatePeriod(ctx, period)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rental period")
	}
	return created, nil
}

func (s *service) ListPeriods(ctx context.Context) ([]models.RentalPeriod, error) {
	periods, err := s.repo.ListPeriods(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rental periods")
	}
	return periods, nil
}

func (s *service) ownedProduct(ctx context.Context, vendorID, productID uuid.UUID) (*models.Product, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "vendor identity missing")
	}
	product, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.VendorID != vendorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to vendor")
	}
	return product, nil
}

func buildVariant(productID uuid.UUID, input VariantInput) (*models.ProductVariant, error) {
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant sku required")
	}
	if input.StockQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}
	return &models.ProductVariant{
		ID:        uuid.New(),
		ProductID: productID,
		SKU:       sku,
		Name:      strings.TrimSpace(input.Name),
		StockQty:  input.StockQty,
	}, nil
}
