package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart-backend/internal/coupons"
	"github.com/rentkart/rentkart-backend/internal/quotations"
	"github.com/rentkart/rentkart-backend/pkg/db/models"
	"github.com/rentkart/rentkart-backend/pkg/enums"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
	"github.com/rentkart/rentkart-backend/pkg/logger"
	"github.com/rentkart/rentkart-backend/pkg/metrics"
	"github.com/rentkart/rentkart-backend/pkg/pagination"
)

// CouponSource loads coupons referenced by quotations.
type CouponSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
}

// TxRunner executes a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service materializes confirmed quotations into rental orders and
// drives the order lifecycle from there.
type Service interface {
	ConfirmFromQuotation(ctx context.Context, quotationID uuid.UUID) (*models.RentalOrder, error)
	TransitionStatus(ctx context.Context, orderID, vendorID uuid.UUID, target enums.OrderStatus) (*models.RentalOrder, error)
	GetForCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*models.RentalOrder, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, page pagination.Params) ([]models.RentalOrder, string, error)
	ListForVendor(ctx context.Context, vendorID uuid.UUID, page pagination.Params) ([]models.RentalOrder, string, error)
	ListAll(ctx context.Context, page pagination.Params) ([]models.RentalOrder, string, error)
}

type service struct {
	repo       Repository
	quotations quotations.Repository
	coupons    CouponSource
	tx         TxRunner
	logg       *logger.Logger
	checkout   *metrics.CheckoutMetrics
	now        func() time.Time
}

// Deps wires the order service collaborators.
type Deps struct {
	Repo       Repository
	Quotations quotations.Repository
	Coupons    CouponSource
	Tx         TxRunner
	Logger     *logger.Logger
	Checkout   *metrics.CheckoutMetrics
}

// NewService builds the order service.
func NewService(deps Deps) (Service, error) {
	if deps.Repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if deps.Quotations == nil {
		return nil, fmt.Errorf("quotation repository required")
	}
	if deps.Coupons == nil {
		return nil, fmt.Errorf("coupon source required")
	}
	if deps.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:       deps.Repo,
		quotations: deps.Quotations,
		coupons:    deps.Coupons,
		tx:         deps.Tx,
		logg:       deps.Logger,
		checkout:   deps.Checkout,
		now:        time.Now,
	}, nil
}

// ConfirmFromQuotation creates the rental order for a sent quotation.
// The call is idempotent: when the quotation already has an order, that
// order is returned and nothing is written. Both guards, the status
// check and the existing-order check, run inside one transaction with
// the quotation row locked, so two concurrent confirmations cannot
// both create an order. The unique index on quotation_id backstops the
// same invariant at the storage level.
func (s *service) ConfirmFromQuotation(ctx context.Context, quotationID uuid.UUID) (*models.RentalOrder, error) {
	if quotationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quotation id required")
	}

	var (
		order   *models.RentalOrder
		created bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		qrepo := s.quotations.WithTx(tx)
		orepo := s.repo.WithTx(tx)

		quotation, err := qrepo.FindByIDForUpdate(ctx, quotationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quotation")
		}

		existing, err := orepo.FindByQuotationID(ctx, quotationID)
		if err == nil {
			order = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing order")
		}

		if quotation.Status != enums.QuotationStatusSent {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("quotation cannot be confirmed from status %s", quotation.Status))
		}

		subtotal := quotation.ItemSubtotal().Round(2)
		discount, couponCode, err := s.resolveDiscount(ctx, quotation, subtotal)
		if err != nil {
			return err
		}
		total := subtotal.Sub(discount).Add(quotation.DeliveryCharge).Round(2)

		order = &models.RentalOrder{
			ID:              uuid.New(),
			QuotationID:     quotation.ID,
			CustomerID:      quotation.CustomerID,
			VendorID:        quotation.VendorID,
			Status:          enums.OrderStatusConfirmed,
			FulfillmentType: quotation.FulfillmentType,
			Subtotal:        subtotal,
			DiscountAmount:  discount,
			DeliveryCharge:  quotation.DeliveryCharge,
			TotalAmount:     total,
			CouponCode:      couponCode,
		}
		for _, item := range quotation.Items {
			order.Items = append(order.Items, models.OrderItem{
				ID:          uuid.New(),
				OrderID:     order.ID,
				VariantID:   item.VariantID,
				Quantity:    item.Quantity,
				RentalStart: item.RentalStart,
				RentalEnd:   item.RentalEnd,
				UnitPrice:   item.UnitPrice,
			})
		}

		if err := orepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		ok, err := qrepo.TransitionStatus(ctx, quotation.ID, enums.QuotationStatusSent, enums.QuotationStatusConfirmed, s.now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm quotation")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quotation status changed concurrently")
		}

		created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.checkout.IncQuotation(enums.QuotationStatusConfirmed.String())
		s.checkout.IncOrder(order.FulfillmentType.String())
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"order_id":     order.ID.String(),
				"quotation_id": order.QuotationID.String(),
				"total":        order.TotalAmount.StringFixed(2),
			})
			s.logg.Info(logCtx, "rental order created")
		}
	}
	return order, nil
}

// TransitionStatus moves a rental order along its lifecycle on behalf
// of the owning vendor: confirmed -> active when the equipment goes
// out, active -> completed when it comes back, and cancelled from
// either non-terminal state. The repo update is guarded on the current
// status, so concurrent transitions cannot both win.
func (s *service) TransitionStatus(ctx context.Context, orderID, vendorID uuid.UUID, target enums.OrderStatus) (*models.RentalOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "vendor identity missing")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.VendorID != vendorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to vendor")
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order cannot move from status %s to %s", order.Status, target))
	}

	ok, err := s.repo.TransitionStatus(ctx, orderID, order.Status, target, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
	}

	order.Status = target
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": order.ID.String(),
			"status":   target.String(),
		})
		s.logg.Info(logCtx, "rental order status updated")
	}
	return order, nil
}

// resolveDiscount recomputes the coupon discount against the item
// subtotal at confirmation time and snapshots the code onto the order.
// A coupon deleted between submission and confirmation degrades to no
// discount instead of failing the confirmation.
func (s *service) resolveDiscount(ctx context.Context, quotation *models.Quotation, subtotal decimal.Decimal) (decimal.Decimal, *string, error) {
	if quotation.CouponID == nil {
		return decimal.Zero, nil, nil
	}

	coupon, err := s.coupons.FindByID(ctx, *quotation.CouponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil, nil
		}
		return decimal.Zero, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	code := coupon.Code
	return coupons.ComputeDiscount(coupon, subtotal), &code, nil
}

func (s *service) GetForCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*models.RentalOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
	}
	return order, nil
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID, page pagination.Params) ([]models.RentalOrder, string, error) {
	rows, next, err := s.repo.ListByCustomer(ctx, customerID, page)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, next, nil
}

func (s *service) ListForVendor(ctx context.Context, vendorID uuid.UUID, page pagination.Params) ([]models.RentalOrder, string, error) {
	rows, next, err := s.repo.ListByVendor(ctx, vendorID, page)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, next, nil
}

func (s *service) ListAll(ctx context.Context, page pagination.Params) ([]models.RentalOrder, string, error) {
	rows, next, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, next, nil
}
