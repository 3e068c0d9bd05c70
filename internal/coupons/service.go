package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart-backend/pkg/db/models"
	"github.com/rentkart/rentkart-backend/pkg/enums"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
)

// Repository exposes coupon persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
}

// Service manages coupon administration and resolution.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.Coupon, error)
	Resolve(ctx context.Context, code string, at time.Time) (*models.Coupon, error)
}

// CreateInput carries the admin-provided coupon fields.
type CreateInput struct {
	Code        string
	Type        enums.CouponType
	Value       decimal.Decimal
	MaxDiscount *decimal.Decimal
	ValidFrom   time.Time
	ValidUntil  time.Time
}

// UpdateInput carries partial coupon updates.
type UpdateInput struct {
	Value       *decimal.Decimal
	MaxDiscount *decimal.Decimal
	Active      *bool
	ValidFrom   *time.Time
	ValidUntil  *time.Time
}

type service struct {
	repo Repository
}

// NewService builds the coupon service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon type")
	}
	if input.Value.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon value cannot be negative")
	}
	if input.Type == enums.CouponTypePercentage && input.Value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage value cannot exceed 100")
	}
	if !input.ValidUntil.After(input.ValidFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validity window must end after it starts")
	}

	coupon := &models.Coupon{
		Code:        code,
		Type:        input.Type,
		Value:       input.Value,
		MaxDiscount: input.MaxDiscount,
		Active:      true,
		ValidFrom:   input.ValidFrom,
		ValidUntil:  input.ValidUntil,
	}
	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon id required")
	}

	updates := map[string]any{}
	if input.Value != nil {
		if input.Value.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "coupon value cannot be negative")
		}
		updates["value"] = *input.Value
	}
	if input.MaxDiscount != nil {
		updates["max_discount"] = *input.MaxDiscount
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}
	if input.ValidFrom != nil {
		updates["valid_from"] = *input.ValidFrom
	}
	if input.ValidUntil != nil {
		updates["valid_until"] = *input.ValidUntil
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon id required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete coupon")
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	return coupons, nil
}

// Resolve returns the coupon for a code only when it is active and
// inside its validity window at the given time.
func (s *service) Resolve(ctx context.Context, code string, at time.Time) (*models.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if !coupon.IsUsableAt(at) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon is not currently usable")
	}
	return coupon, nil
}

// ComputeDiscount applies the coupon formula to a subtotal: FLAT
// discounts never exceed the subtotal, PERCENTAGE discounts are capped
// by MaxDiscount when one is set.
func ComputeDiscount(coupon *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon == nil || subtotal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	switch coupon.Type {
	case enums.CouponTypeFlat:
		if coupon.Value.GreaterThan(subtotal) {
			return subtotal.Round(2)
		}
		return coupon.Value.Round(2)

	case enums.CouponTypePercentage:
		discount := subtotal.Mul(coupon.Value).Div(decimal.NewFromInt(100))
		if coupon.MaxDiscount != nil && discount.GreaterThan(*coupon.MaxDiscount) {
			discount = *coupon.MaxDiscount
		}
		return discount.Round(2)
	}

	return decimal.Zero
}
