package quotations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart-backend/internal/cart"
	"github.com/rentkart/rentkart-backend/internal/delivery"
	"github.com/rentkart/rentkart-backend/pkg/db/models"
	"github.com/rentkart/rentkart-backend/pkg/enums"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
	"github.com/rentkart/rentkart-backend/pkg/pagination"
)

type stubQuotationRepo struct {
	created     []*models.Quotation
	quotation   *models.Quotation
	transitions []enums.QuotationStatus
	denyNext    bool
}

func (s *stubQuotationRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubQuotationRepo) Create(ctx context.Context, quotation *models.Quotation) error {
	s.created = append(s.created, quotation)
	return nil
}

func (s *stubQuotationRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	if s.quotation == nil || s.quotation.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.quotation, nil
}

func (s *stubQuotationRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	return s.FindByID(ctx, id)
}

func (s *stubQuotationRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, page pagination.Params) ([]models.Quotation, string, error) {
	return nil, "", nil
}

func (s *stubQuotationRepo) ListByVendor(ctx context.Context, vendorID uuid.UUID, page pagination.Params) ([]models.Quotation, string, error) {
	return nil, "", nil
}

func (s *stubQuotationRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.QuotationStatus, at time.Time) (bool, error) {
	if s.denyNext {
		return false, nil
	}
	s.transitions = append(s.transitions, to)
	if s.quotation != nil {
		s.quotation.Status = to
	}
	return true, nil
}

type stubCartRepo struct {
	cart    *models.Cart
	cleared bool
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) cart.Repository { return s }

func (s *stubCartRepo) FindOrCreateByCustomer(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	return s.cart, nil
}

func (s *stubCartRepo) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	if s.cart == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.cart, nil
}

func (s *stubCartRepo) UpsertItem(ctx context.Context, item *models.CartItem) error { return nil }

func (s *stubCartRepo) FindItemByID(ctx context.Context, itemID uuid.UUID) (*models.CartItem, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) FindItemsByCart(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	return s.cart.Items, nil
}

func (s *stubCartRepo) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return nil
}

func (s *stubCartRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error { return nil }

func (s *stubCartRepo) DeleteItemsByCart(ctx context.Context, cartID uuid.UUID) error {
	s.cleared = true
	return nil
}

type stubVendorSource struct{}

func (s *stubVendorSource) FindVendorByID(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	company := "Vendor " + vendorID.String()[:8]
	return &models.Vendor{ID: vendorID, Name: "owner", CompanyName: &company, Email: "vendor@example.com"}, nil
}

type stubCouponResolver struct {
	coupon *models.Coupon
	err    error
}

func (s *stubCouponResolver) Resolve(ctx context.Context, code string, at time.Time) (*models.Coupon, error) {
	return s.coupon, s.err
}

type stubBlocklist struct {
	blocked map[uuid.UUID]bool
}

func (s *stubBlocklist) IsBlocked(ctx context.Context, vendorID uuid.UUID) (bool, error) {
	return s.blocked[vendorID], nil
}

type stubCalculator struct {
	charges map[uuid.UUID]decimal.Decimal
	calls   int
}

func (s *stubCalculator) ComputeDeliveryCharges(ctx context.Context, groups []delivery.VendorGroup, destination string) (*delivery.Result, error) {
	s.calls++
	result := &delivery.Result{Total: decimal.Zero}
	for _, group := range groups {
		charge := s.charges[group.VendorID]
		result.PerVendor = append(result.PerVendor, delivery.VendorCharge{VendorID: group.VendorID, Charge: charge})
		result.Total = result.Total.Add(charge)
	}
	return result, nil
}

type stubTxRunner struct{}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func cartWithVendors(customerID uuid.UUID, vendorIDs ...uuid.UUID) *models.Cart {
	c := &models.Cart{ID: uuid.New(), CustomerID: customerID}
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	for _, vendorID := range vendorIDs {
		c.Items = append(c.Items, models.CartItem{
			ID:          uuid.New(),
			CartID:      c.ID,
			VariantID:   uuid.New(),
			VendorID:    vendorID,
			Quantity:    2,
			RentalStart: start,
			RentalEnd:   start.Add(72 * time.Hour),
			UnitPrice:   decimal.RequireFromString("150"),
		})
	}
	return c
}

func newTestService(t *testing.T, repo *stubQuotationRepo, carts *stubCartRepo, blocklist *stubBlocklist, calc *stubCalculator, resolver *stubCouponResolver) Service {
	t.Helper()
	if blocklist == nil {
		blocklist = &stubBlocklist{}
	}
	if calc == nil {
		calc = &stubCalculator{}
	}
	if resolver == nil {
		resolver = &stubCouponResolver{}
	}
	svc, err := NewService(Deps{
		Repo:       repo,
		Carts:      carts,
		Vendors:    &stubVendorSource{},
		Coupons:    resolver,
		Blocklist:  blocklist,
		Calculator: calc,
		Tx:         &stubTxRunner{},
	})
	require.NoError(t, err)
	return svc
}

func TestSubmitSplitsCartPerVendor(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	vendorA, vendorB, vendorC := uuid.New(), uuid.New(), uuid.New()
	carts := &stubCartRepo{cart: cartWithVendors(customerID, vendorA, vendorB, vendorC, vendorA)}
	repo := &stubQuotationRepo{}
	svc := newTestService(t, repo, carts, nil, nil, nil)

	result, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:      customerID,
		FulfillmentType: enums.FulfillmentTypeStorePickup,
	})
	require.NoError(t, err)

	// Four items across three vendors collapse into three quotations.
	require.Len(t, result.Quotations, 3)
	require.Len(t, repo.created, 3)
	assert.True(t, carts.cleared, "cart must be cleared in the same transaction")

	byVendor := map[uuid.UUID]*models.Quotation{}
	for _, q := range repo.created {
		assert.Equal(t, enums.QuotationStatusDraft, q.Status)
		assert.Equal(t, customerID, q.CustomerID)
		byVendor[q.VendorID] = q
	}
	require.Len(t, byVendor[vendorA].Items, 2)
	require.Len(t, byVendor[vendorB].Items, 1)

	// Lines are copied verbatim, frozen price included.
	original := carts.cart.Items[0]
	copied := byVendor[vendorA].Items[0]
	assert.Equal(t, original.VariantID, copied.VariantID)
	assert.Equal(t, original.Quantity, copied.Quantity)
	assert.True(t, original.UnitPrice.Equal(copied.UnitPrice))
	assert.Equal(t, original.RentalStart, copied.RentalStart)
}

func TestSubmitEmptyCartRejected(t *testing.T) {
	t.Parallel()

	repo := &stubQuotationRepo{}
	svc := newTestService(t, repo, &stubCartRepo{}, nil, nil, nil)

	_, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:      uuid.New(),
		FulfillmentType: enums.FulfillmentTypeStorePickup,
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
	assert.Empty(t, repo.created)
}

func TestSubmitBlockedVendorRejected(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	vendorA, vendorB := uuid.New(), uuid.New()
	carts := &stubCartRepo{cart: cartWithVendors(customerID, vendorA, vendorB)}
	repo := &stubQuotationRepo{}
	blocklist := &stubBlocklist{blocked: map[uuid.UUID]bool{vendorB: true}}
	svc := newTestService(t, repo, carts, blocklist, nil, nil)

	_, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:      customerID,
		FulfillmentType: enums.FulfillmentTypeStorePickup,
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
	assert.Empty(t, repo.created, "no quotation may be created when any vendor is blocked")
	assert.False(t, carts.cleared)
}

func TestSubmitDeliveryAttachesPerVendorCharges(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	vendorA, vendorB := uuid.New(), uuid.New()
	carts := &stubCartRepo{cart: cartWithVendors(customerID, vendorA, vendorB)}
	repo := &stubQuotationRepo{}
	calc := &stubCalculator{charges: map[uuid.UUID]decimal.Decimal{
		vendorA: decimal.RequireFromString("120.50"),
		vendorB: decimal.Zero,
	}}
	svc := newTestService(t, repo, carts, nil, calc, nil)

	result, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:      customerID,
		FulfillmentType: enums.FulfillmentTypeDelivery,
		DeliveryAddress: "12 Harbor Rd, Rotterdam",
	})
	require.NoError(t, err)
	require.Equal(t, 1, calc.calls)

	charges := map[uuid.UUID]decimal.Decimal{}
	for _, summary := range result.Quotations {
		charges[summary.VendorID] = summary.DeliveryCharge
	}
	assert.True(t, charges[vendorA].Equal(decimal.RequireFromString("120.50")))
	assert.True(t, charges[vendorB].Equal(decimal.Zero))
}

func TestSubmitPickupSkipsDeliveryCalculation(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	carts := &stubCartRepo{cart: cartWithVendors(customerID, uuid.New())}
	calc := &stubCalculator{}
	svc := newTestService(t, &stubQuotationRepo{}, carts, nil, calc, nil)

	_, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:      customerID,
		FulfillmentType: enums.FulfillmentTypeStorePickup,
	})
	require.NoError(t, err)
	assert.Zero(t, calc.calls)
}

func TestSubmitDeliveryRequiresAddress(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	carts := &stubCartRepo{cart: cartWithVendors(customerID, uuid.New())}
	svc := newTestService(t, &stubQuotationRepo{}, carts, nil, nil, nil)

	_, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:      customerID,
		FulfillmentType: enums.FulfillmentTypeDelivery,
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestSubmitAttachesResolvedCoupon(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	carts := &stubCartRepo{cart: cartWithVendors(customerID, uuid.New())}
	repo := &stubQuotationRepo{}
	coupon := &models.Coupon{ID: uuid.New(), Code: "SPRING10"}
	svc := newTestService(t, repo, carts, nil, nil, &stubCouponResolver{coupon: coupon})

	_, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:      customerID,
		FulfillmentType: enums.FulfillmentTypeStorePickup,
		CouponCode:      "SPRING10",
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	require.NotNil(t, repo.created[0].CouponID)
	assert.Equal(t, coupon.ID, *repo.created[0].CouponID)
}

func TestSubmitCarriesAddressReferences(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	vendorA, vendorB := uuid.New(), uuid.New()
	carts := &stubCartRepo{cart: cartWithVendors(customerID, vendorA, vendorB)}
	repo := &stubQuotationRepo{}
	svc := newTestService(t, repo, carts, nil, nil, nil)

	deliveryAddressID := uuid.New()
	billingAddressID := uuid.New()
	_, err := svc.Submit(context.Background(), SubmitInput{
		CustomerID:        customerID,
		FulfillmentType:   enums.FulfillmentTypeDelivery,
		DeliveryAddress:   "12 Harbor Rd, Rotterdam",
		DeliveryAddressID: &deliveryAddressID,
		BillingAddressID:  &billingAddressID,
	})
	require.NoError(t, err)

	require.Len(t, repo.created, 2)
	for _, q := range repo.created {
		require.NotNil(t, q.DeliveryAddressID)
		assert.Equal(t, deliveryAddressID, *q.DeliveryAddressID)
		require.NotNil(t, q.BillingAddressID)
		assert.Equal(t, billingAddressID, *q.BillingAddressID)
	}
}

func TestSendTransitionsDraftToSent(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	repo := &stubQuotationRepo{quotation: &models.Quotation{
		ID:       uuid.New(),
		VendorID: vendorID,
		Status:   enums.QuotationStatusDraft,
	}}
	svc := newTestService(t, repo, &stubCartRepo{}, nil, nil, nil)

	require.NoError(t, svc.Send(context.Background(), repo.quotation.ID, vendorID))
	require.Len(t, repo.transitions, 1)
	assert.Equal(t, enums.QuotationStatusSent, repo.transitions[0])
}

func TestSendRejectsForeignVendor(t *testing.T) {
	t.Parallel()

	repo := &stubQuotationRepo{quotation: &models.Quotation{
		ID:       uuid.New(),
		VendorID: uuid.New(),
		Status:   enums.QuotationStatusDraft,
	}}
	svc := newTestService(t, repo, &stubCartRepo{}, nil, nil, nil)

	err := svc.Send(context.Background(), repo.quotation.ID, uuid.New())
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeForbidden, coded.Code())
}

func TestCancelRejectsTerminalStatus(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	repo := &stubQuotationRepo{quotation: &models.Quotation{
		ID:       uuid.New(),
		VendorID: vendorID,
		Status:   enums.QuotationStatusConfirmed,
	}}
	svc := newTestService(t, repo, &stubCartRepo{}, nil, nil, nil)

	err := svc.Cancel(context.Background(), repo.quotation.ID, vendorID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
	assert.Empty(t, repo.transitions)
}
