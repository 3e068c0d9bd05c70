package vendors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart-backend/pkg/db/models"
	"github.com/rentkart/rentkart-backend/pkg/enums"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
)

// TxRunner executes a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages vendor onboarding and delivery policies.
type Service interface {
	Register(ctx context.Context, ownerID uuid.UUID, input RegisterInput) (*models.Vendor, error)
	GetByID(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Vendor, error)
	List(ctx context.Context) ([]models.Vendor, error)
	ConfigureDelivery(ctx context.Context, vendorID uuid.UUID, input DeliveryConfigInput) error
}

// AddressInput captures a pickup location.
type AddressInput struct {
	Line1      string
	Line2      *string
	City       string
	State      string
	PostalCode string
	Country    string
}

// RegisterInput captures a vendor onboarding request.
type RegisterInput struct {
	Name          string
	CompanyName   *string
	Email         string
	Phone         *string
	PickupAddress *AddressInput
}

// DeliveryConfigInput captures a vendor's delivery billing policy.
type DeliveryConfigInput struct {
	Enabled         bool
	ChargeType      enums.DeliveryChargeType
	FlatCharge      decimal.Decimal
	RatePerKm       decimal.Decimal
	MaxDeliveryKm   *float64
	FreeAboveAmount *decimal.Decimal
}

type service struct {
	repo Repository
	tx   TxRunner
}

// NewService builds the vendor service.
func NewService(repo Repository, tx TxRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Register creates a vendor profile for the owning user. The pickup
// address and vendor row are written in one transaction.
func (s *service) Register(ctx context.Context, ownerID uuid.UUID, input RegisterInput) (*models.Vendor, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner identity missing")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor name required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid email required")
	}

	if existing, err := s.repo.FindVendorByOwner(ctx, ownerID); err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "owner already has a vendor profile")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing vendor")
	}

	vendor := &models.Vendor{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        name,
		CompanyName: input.CompanyName,
		Email:       email,
		Phone:       input.Phone,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if input.PickupAddress != nil {
			address, err := buildAddress(*input.PickupAddress)
			if err != nil {
				return err
			}
			created, err := repo.CreateAddress(ctx, address)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create pickup address")
			}
			vendor.PickupAddressID = &created.ID
			vendor.PickupAddress = created
		}

		if _, err := repo.Create(ctx, vendor); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vendor")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vendor, nil
}

func (s *service) GetByID(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	vendor, err := s.repo.FindVendorByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	return vendor, nil
}

func (s *service) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Vendor, error) {
	vendor, err := s.repo.FindVendorByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	return vendor, nil
}

func (s *service) List(ctx context.Context) ([]models.Vendor, error) {
	vendors, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendors")
	}
	return vendors, nil
}

// ConfigureDelivery validates and upserts the vendor's delivery policy.
func (s *service) ConfigureDelivery(ctx context.Context, vendorID uuid.UUID, input DeliveryConfigInput) error {
	if vendorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "vendor identity missing")
	}
	if !input.ChargeType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery charge type")
	}

	switch input.ChargeType {
	case enums.DeliveryChargeTypeFlat:
		if input.FlatCharge.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "flat charge cannot be negative")
		}
	case enums.DeliveryChargeTypePerKm:
		if input.RatePerKm.LessThanOrEqual(decimal.Zero) {
			return pkgerrors.New(pkgerrors.CodeValidation, "per-km rate must be positive")
		}
	}
	if input.MaxDeliveryKm != nil && *input.MaxDeliveryKm <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "max delivery distance must be positive")
	}
	if input.FreeAboveAmount != nil && input.FreeAboveAmount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "free-above threshold cannot be negative")
	}

	if _, err := s.GetByID(ctx, vendorID); err != nil {
		return err
	}

	cfg := &models.VendorDeliveryConfig{
		ID:              uuid.New(),
		VendorID:        vendorID,
		Enabled:         input.Enabled,
		ChargeType:      input.ChargeType,
		FlatCharge:      input.FlatCharge.Round(2),
		RatePerKm:       input.RatePerKm.Round(2),
		MaxDeliveryKm:   input.MaxDeliveryKm,
		FreeAboveAmount: input.FreeAboveAmount,
	}
	if err := s.repo.UpsertDeliveryConfig(ctx, cfg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save delivery config")
	}
	return nil
}

func buildAddress(input AddressInput) (*models.Address, error) {
	if strings.TrimSpace(input.Line1) == "" || strings.TrimSpace(input.City) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address line1 and city required")
	}
	country := strings.TrimSpace(input.Country)
	if country == "" {
		country = "IN"
	}
	return &models.Address{
		ID:         uuid.New(),
		Line1:      strings.TrimSpace(input.Line1),
		Line2:      input.Line2,
		City:       strings.TrimSpace(input.City),
		State:      strings.TrimSpace(input.State),
		PostalCode: strings.TrimSpace(input.PostalCode),
		Country:    country,
	}, nil
}
