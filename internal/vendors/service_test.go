package vendors

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart-backend/pkg/db/models"
	"github.com/rentkart/rentkart-backend/pkg/enums"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
)

type stubVendorRepo struct {
	byOwner   map[uuid.UUID]*models.Vendor
	byID      map[uuid.UUID]*models.Vendor
	addresses []*models.Address
	configs   []*models.VendorDeliveryConfig
}

func newStubVendorRepo() *stubVendorRepo {
	return &stubVendorRepo{
		byOwner: map[uuid.UUID]*models.Vendor{},
		byID:    map[uuid.UUID]*models.Vendor{},
	}
}

func (s *stubVendorRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubVendorRepo) Create(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error) {
	s.byOwner[vendor.OwnerID] = vendor
	s.byID[vendor.ID] = vendor
	return vendor, nil
}

func (s *stubVendorRepo) FindVendorByID(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	if vendor, ok := s.byID[vendorID]; ok {
		return vendor, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubVendorRepo) FindVendorByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Vendor, error) {
	if vendor, ok := s.byOwner[ownerID]; ok {
		return vendor, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubVendorRepo) UpsertDeliveryConfig(ctx context.Context, cfg *models.VendorDeliveryConfig) error {
	s.configs = append(s.configs, cfg)
	return nil
}

func (s *stubVendorRepo) CreateAddress(ctx context.Context, address *models.Address) (*models.Address, error) {
	s.addresses = append(s.addresses, address)
	return address, nil
}

func (s *stubVendorRepo) List(ctx context.Context) ([]models.Vendor, error) { return nil, nil }

type stubTxRunner struct{}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo *stubVendorRepo) Service {
	t.Helper()
	svc, err := NewService(repo, &stubTxRunner{})
	require.NoError(t, err)
	return svc
}

func TestRegisterCreatesVendorWithPickupAddress(t *testing.T) {
	t.Parallel()

	repo := newStubVendorRepo()
	svc := newTestService(t, repo)

	company := "Heavylift BV"
	vendor, err := svc.Register(context.Background(), uuid.New(), RegisterInput{
		Name:        "Jan",
		CompanyName: &company,
		Email:       "Rentals@Heavylift.example",
		PickupAddress: &AddressInput{
			Line1:      "Dok 4",
			City:       "Rotterdam",
			State:      "ZH",
			PostalCode: "3089",
			Country:    "NL",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "rentals@heavylift.example", vendor.Email)
	assert.Equal(t, "Heavylift BV", vendor.DisplayName())
	require.NotNil(t, vendor.PickupAddressID)
	require.Len(t, repo.addresses, 1)
	assert.Equal(t, *vendor.PickupAddressID, repo.addresses[0].ID)
}

func TestRegisterRejectsSecondProfileForOwner(t *testing.T) {
	t.Parallel()

	repo := newStubVendorRepo()
	svc := newTestService(t, repo)
	ownerID := uuid.New()

	_, err := svc.Register(context.Background(), ownerID, RegisterInput{Name: "Jan", Email: "a@b.example"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), ownerID, RegisterInput{Name: "Jan", Email: "a@b.example"})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())
}

func TestConfigureDeliveryValidatesPerKmRate(t *testing.T) {
	t.Parallel()

	repo := newStubVendorRepo()
	svc := newTestService(t, repo)
	vendor, err := svc.Register(context.Background(), uuid.New(), RegisterInput{Name: "Jan", Email: "a@b.example"})
	require.NoError(t, err)

	err = svc.ConfigureDelivery(context.Background(), vendor.ID, DeliveryConfigInput{
		Enabled:    true,
		ChargeType: enums.DeliveryChargeTypePerKm,
		RatePerKm:  decimal.Zero,
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
	assert.Empty(t, repo.configs)
}

func TestConfigureDeliveryUpsertsPolicy(t *testing.T) {
	t.Parallel()

	repo := newStubVendorRepo()
	svc := newTestService(t, repo)
	vendor, err := svc.Register(context.Background(), uuid.New(), RegisterInput{Name: "Jan", Email: "a@b.example"})
	require.NoError(t, err)

	maxKm := 25.0
	freeAbove := decimal.RequireFromString("5000")
	err = svc.ConfigureDelivery(context.Background(), vendor.ID, DeliveryConfigInput{
		Enabled:         true,
		ChargeType:      enums.DeliveryChargeTypePerKm,
		RatePerKm:       decimal.RequireFromString("18.5"),
		MaxDeliveryKm:   &maxKm,
		FreeAboveAmount: &freeAbove,
	})
	require.NoError(t, err)
	require.Len(t, repo.configs, 1)
	assert.Equal(t, vendor.ID, repo.configs[0].VendorID)
	assert.True(t, repo.configs[0].RatePerKm.Equal(decimal.RequireFromString("18.5")))
}
