package quotations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart-backend/internal/cart"
	"github.com/rentkart/rentkart-backend/internal/delivery"
	"github.com/rentkart/rentkart-backend/pkg/db/models"
	"github.com/rentkart/rentkart-backend/pkg/enums"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
	"github.com/rentkart/rentkart-backend/pkg/logger"
	"github.com/rentkart/rentkart-backend/pkg/mail"
	"github.com/rentkart/rentkart-backend/pkg/metrics"
	"github.com/rentkart/rentkart-backend/pkg/pagination"
)

// VendorSource loads vendors for display names and notification targets.
type VendorSource interface {
	FindVendorByID(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error)
}

// UserSource loads customers for notification targets.
type UserSource interface {
	FindUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// CouponResolver validates a coupon code at submission time.
type CouponResolver interface {
	Resolve(ctx context.Context, code string, at time.Time) (*models.Coupon, error)
}

// VendorBlocklist reports vendors suspended from receiving quotations.
type VendorBlocklist interface {
	IsBlocked(ctx context.Context, vendorID uuid.UUID) (bool, error)
}

// TxRunner executes a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service turns carts into vendor quotations and drives their lifecycle
// up to confirmation.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error)
	Send(ctx context.Context, quotationID, vendorID uuid.UUID) error
	Cancel(ctx context.Context, quotationID, vendorID uuid.UUID) error
	GetForCustomer(ctx context.Context, quotationID, customerID uuid.UUID) (*models.Quotation, error)
	GetForVendor(ctx context.Context, quotationID, vendorID uuid.UUID) (*models.Quotation, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, page pagination.Params) ([]models.Quotation, string, error)
	ListForVendor(ctx context.Context, vendorID uuid.UUID, page pagination.Params) ([]models.Quotation, string, error)
}

// SubmitInput captures a cart submission.
type SubmitInput struct {
	CustomerID        uuid.UUID
	FulfillmentType   enums.FulfillmentType
	DeliveryAddress   string
	DeliveryAddressID *uuid.UUID
	BillingAddressID  *uuid.UUID
	CouponCode        string
}

// Summary describes one quotation produced by a submission.
type Summary struct {
	QuotationID    uuid.UUID       `json:"quotation_id"`
	VendorID       uuid.UUID       `json:"vendor_id"`
	VendorName     string          `json:"vendor_name"`
	ItemCount      int             `json:"item_count"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
}

// SubmitResult is the full outcome of one cart submission.
type SubmitResult struct {
	Quotations []Summary `json:"quotations"`
}

type service struct {
	repo       Repository
	carts      cart.Repository
	vendors    VendorSource
	users      UserSource
	coupons    CouponResolver
	blocklist  VendorBlocklist
	calculator delivery.Calculator
	tx         TxRunner
	mailer     mail.Sender
	logg       *logger.Logger
	checkout   *metrics.CheckoutMetrics
	now        func() time.Time
}

// Deps wires the quotation service collaborators. Mailer, logger and
// metrics are optional; everything else is required.
type Deps struct {
	Repo       Repository
	Carts      cart.Repository
	Vendors    VendorSource
	Users      UserSource
	Coupons    CouponResolver
	Blocklist  VendorBlocklist
	Calculator delivery.Calculator
	Tx         TxRunner
	Mailer     mail.Sender
	Logger     *logger.Logger
	Checkout   *metrics.CheckoutMetrics
}

// NewService builds the quotation service.
func NewService(deps Deps) (Service, error) {
	if deps.Repo == nil {
		return nil, fmt.Errorf("quotation repository required")
	}
	if deps.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if deps.Vendors == nil {
		return nil, fmt.Errorf("vendor source required")
	}
	if deps.Coupons == nil {
		return nil, fmt.Errorf("coupon resolver required")
	}
	if deps.Blocklist == nil {
		return nil, fmt.Errorf("vendor blocklist required")
	}
	if deps.Calculator == nil {
		return nil, fmt.Errorf("delivery calculator required")
	}
	if deps.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:       deps.Repo,
		carts:      deps.Carts,
		vendors:    deps.Vendors,
		users:      deps.Users,
		coupons:    deps.Coupons,
		blocklist:  deps.Blocklist,
		calculator: deps.Calculator,
		tx:         deps.Tx,
		mailer:     deps.Mailer,
		logg:       deps.Logger,
		checkout:   deps.Checkout,
		now:        time.Now,
	}, nil
}

// Submit splits the customer's cart into one draft quotation per
// distinct vendor. Items are copied verbatim with their frozen prices;
// the delivery charge is computed per vendor only for delivery
// fulfillment; the cart is cleared in the same transaction, so a
// failure anywhere leaves both the cart and the quotations untouched.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	if !input.FulfillmentType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fulfillment type")
	}
	isDelivery := input.FulfillmentType == enums.FulfillmentTypeDelivery
	if isDelivery && input.DeliveryAddress == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address required for delivery fulfillment")
	}

	current, err := s.carts.FindByCustomer(ctx, input.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(current.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	groups := groupByVendor(current.Items)

	vendorsByID := make(map[uuid.UUID]*models.Vendor, len(groups))
	for _, group := range groups {
		blocked, err := s.blocklist.IsBlocked(ctx, group.vendorID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "vendor is not accepting quotations").
				WithDetails(map[string]any{"vendor_id": group.vendorID})
		}

		vendor, err := s.vendors.FindVendorByID(ctx, group.vendorID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
		}
		vendorsByID[group.vendorID] = vendor
	}

	var coupon *models.Coupon
	if input.CouponCode != "" {
		coupon, err = s.coupons.Resolve(ctx, input.CouponCode, s.now())
		if err != nil {
			return nil, err
		}
	}

	// Delivery charges involve outbound geocoding calls, so they are
	// resolved before the transaction opens.
	chargeByVendor := map[uuid.UUID]decimal.Decimal{}
	if isDelivery {
		deliveryGroups := make([]delivery.VendorGroup, 0, len(groups))
		for _, group := range groups {
			deliveryGroups = append(deliveryGroups, delivery.VendorGroup{
				VendorID: group.vendorID,
				Subtotal: group.subtotal,
			})
		}
		charges, err := s.calculator.ComputeDeliveryCharges(ctx, deliveryGroups, input.DeliveryAddress)
		if err != nil {
			return nil, err
		}
		for _, vc := range charges.PerVendor {
			chargeByVendor[vc.VendorID] = vc.Charge
		}
	}

	result := &SubmitResult{Quotations: make([]Summary, 0, len(groups))}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		carts := s.carts.WithTx(tx)

		for _, group := range groups {
			quotation := &models.Quotation{
				ID:                uuid.New(),
				CustomerID:        input.CustomerID,
				VendorID:          group.vendorID,
				Status:            enums.QuotationStatusDraft,
				FulfillmentType:   input.FulfillmentType,
				DeliveryCharge:    chargeByVendor[group.vendorID],
				DeliveryAddressID: input.DeliveryAddressID,
				BillingAddressID:  input.BillingAddressID,
			}
			if coupon != nil {
				quotation.CouponID = &coupon.ID
			}
			for _, item := range group.items {
				quotation.Items = append(quotation.Items, models.QuotationItem{
					ID:          uuid.New(),
					QuotationID: quotation.ID,
					VariantID:   item.VariantID,
					Quantity:    item.Quantity,
					RentalStart: item.RentalStart,
					RentalEnd:   item.RentalEnd,
					UnitPrice:   item.UnitPrice,
				})
			}

			if err := repo.Create(ctx, quotation); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quotation")
			}

			result.Quotations = append(result.Quotations, Summary{
				QuotationID:    quotation.ID,
				VendorID:       group.vendorID,
				VendorName:     vendorsByID[group.vendorID].DisplayName(),
				ItemCount:      len(group.items),
				Subtotal:       group.subtotal.Round(2),
				DeliveryCharge: quotation.DeliveryCharge,
			})
		}

		if err := carts.DeleteItemsByCart(ctx, current.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, summary := range result.Quotations {
		s.checkout.IncQuotation(enums.QuotationStatusDraft.String())
		s.notifyVendor(ctx, vendorsByID[summary.VendorID], summary)
	}
	return result, nil
}

// Send moves a draft quotation to sent on behalf of its vendor and
// notifies the customer best-effort.
func (s *service) Send(ctx context.Context, quotationID, vendorID uuid.UUID) error {
	quotation, err := s.ownedByVendor(ctx, quotationID, vendorID)
	if err != nil {
		return err
	}

	ok, err := s.repo.TransitionStatus(ctx, quotationID, enums.QuotationStatusDraft, enums.QuotationStatusSent, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send quotation")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("quotation cannot be sent from status %s", quotation.Status))
	}

	s.checkout.IncQuotation(enums.QuotationStatusSent.String())
	s.notifyCustomer(ctx, quotation)
	return nil
}

// Cancel voids a quotation that has not been confirmed yet.
func (s *service) Cancel(ctx context.Context, quotationID, vendorID uuid.UUID) error {
	quotation, err := s.ownedByVendor(ctx, quotationID, vendorID)
	if err != nil {
		return err
	}
	if quotation.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("quotation cannot be cancelled from status %s", quotation.Status))
	}

	ok, err := s.repo.TransitionStatus(ctx, quotationID, quotation.Status, enums.QuotationStatusCancelled, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel quotation")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "quotation status changed concurrently")
	}

	s.checkout.IncQuotation(enums.QuotationStatusCancelled.String())
	return nil
}

func (s *service) GetForCustomer(ctx context.Context, quotationID, customerID uuid.UUID) (*models.Quotation, error) {
	quotation, err := s.load(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if quotation.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "quotation does not belong to customer")
	}
	return quotation, nil
}

func (s *service) GetForVendor(ctx context.Context, quotationID, vendorID uuid.UUID) (*models.Quotation, error) {
	return s.ownedByVendor(ctx, quotationID, vendorID)
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID, page pagination.Params) ([]models.Quotation, string, error) {
	rows, next, err := s.repo.ListByCustomer(ctx, customerID, page)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotations")
	}
	return rows, next, nil
}

func (s *service) ListForVendor(ctx context.Context, vendorID uuid.UUID, page pagination.Params) ([]models.Quotation, string, error) {
	rows, next, err := s.repo.ListByVendor(ctx, vendorID, page)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotations")
	}
	return rows, next, nil
}

func (s *service) ownedByVendor(ctx context.Context, quotationID, vendorID uuid.UUID) (*models.Quotation, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "vendor identity missing")
	}
	quotation, err := s.load(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if quotation.VendorID != vendorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "quotation does not belong to vendor")
	}
	return quotation, nil
}

func (s *service) load(ctx context.Context, quotationID uuid.UUID) (*models.Quotation, error) {
	if quotationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quotation id required")
	}
	quotation, err := s.repo.FindByID(ctx, quotationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quotation")
	}
	return quotation, nil
}

func (s *service) notifyVendor(ctx context.Context, vendor *models.Vendor, summary Summary) {
	if vendor == nil || vendor.Email == "" {
		return
	}
	mail.SendAsync(ctx, s.mailer, s.logg, mail.Message{
		ToEmail: vendor.Email,
		ToName:  vendor.DisplayName(),
		Subject: "New rental quotation request",
		PlainText: fmt.Sprintf(
			"You received a new quotation request with %d item(s), subtotal %s.",
			summary.ItemCount, summary.Subtotal.StringFixed(2)),
	})
}

func (s *service) notifyCustomer(ctx context.Context, quotation *models.Quotation) {
	if s.users == nil {
		return
	}
	customer, err := s.users.FindUserByID(ctx, quotation.CustomerID)
	if err != nil || customer.Email == "" {
		return
	}
	vendorName := ""
	if quotation.Vendor != nil {
		vendorName = quotation.Vendor.DisplayName()
	}
	mail.SendAsync(ctx, s.mailer, s.logg, mail.Message{
		ToEmail: customer.Email,
		ToName:  customer.Name,
		Subject: "Your rental quotation is ready",
		PlainText: fmt.Sprintf(
			"%s has sent you a quotation for %s.",
			vendorName, quotation.ItemSubtotal().Add(quotation.DeliveryCharge).StringFixed(2)),
	})
}

type vendorGroup struct {
	vendorID uuid.UUID
	items    []models.CartItem
	subtotal decimal.Decimal
}

// groupByVendor buckets cart items per vendor, preserving the order in
// which vendors first appear in the cart.
func groupByVendor(items []models.CartItem) []vendorGroup {
	index := map[uuid.UUID]int{}
	groups := make([]vendorGroup, 0)
	for _, item := range items {
		i, ok := index[item.VendorID]
		if !ok {
			i = len(groups)
			index[item.VendorID] = i
			groups = append(groups, vendorGroup{vendorID: item.VendorID, subtotal: decimal.Zero})
		}
		groups[i].items = append(groups[i].items, item)
		groups[i].subtotal = groups[i].subtotal.Add(item.LineSubtotal())
	}
	return groups
}
