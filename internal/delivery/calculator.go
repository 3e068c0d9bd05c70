package delivery

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentkart/rentkart-backend/pkg/db/models"
	"github.com/rentkart/rentkart-backend/pkg/enums"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
	"github.com/rentkart/rentkart-backend/pkg/geo"
	"github.com/rentkart/rentkart-backend/pkg/logger"
)

// VendorSource loads vendors with their delivery config and pickup address.
type VendorSource interface {
	FindVendorByID(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error)
}

// VendorGroup is one vendor's slice of the cart with its item subtotal.
type VendorGroup struct {
	VendorID uuid.UUID
	Subtotal decimal.Decimal
}

// VendorCharge is the computed delivery charge for one vendor.
type VendorCharge struct {
	VendorID   uuid.UUID       `json:"vendor_id"`
	Charge     decimal.Decimal `json:"charge"`
	DistanceKm *float64        `json:"distance_km"`
}

// Result aggregates per-vendor charges and their total.
type Result struct {
	PerVendor []VendorCharge  `json:"per_vendor"`
	Total     decimal.Decimal `json:"total"`
}

// Calculator computes per-vendor delivery charges for a destination.
type Calculator interface {
	ComputeDeliveryCharges(ctx context.Context, groups []VendorGroup, destination string) (*Result, error)
}

type calculator struct {
	vendors  VendorSource
	geocoder geo.Geocoder
	router   geo.Router
	logg     *logger.Logger
}

// NewCalculator builds the delivery charge calculator.
func NewCalculator(vendors VendorSource, geocoder geo.Geocoder, router geo.Router, logg *logger.Logger) (Calculator, error) {
	if vendors == nil {
		return nil, fmt.Errorf("vendor source required")
	}
	if geocoder == nil {
		return nil, fmt.Errorf("geocoder required")
	}
	if router == nil {
		return nil, fmt.Errorf("router required")
	}
	return &calculator{
		vendors:  vendors,
		geocoder: geocoder,
		router:   router,
		logg:     logg,
	}, nil
}

// ComputeDeliveryCharges resolves each vendor's policy against the
// destination. Geocoding and routing failures degrade soft: the
// distance stays unknown, flat charges still apply, and per-km charges
// collapse to zero instead of failing the checkout.
func (c *calculator) ComputeDeliveryCharges(ctx context.Context, groups []VendorGroup, destination string) (*Result, error) {
	if len(groups) == 0 {
		return &Result{PerVendor: []VendorCharge{}, Total: decimal.Zero}, nil
	}

	// One destination lookup shared across vendors.
	destCoord := c.geocodeSoft(ctx, destination)

	result := &Result{PerVendor: make([]VendorCharge, 0, len(groups))}
	total := decimal.Zero

	for _, group := range groups {
		vendor, err := c.vendors.FindVendorByID(ctx, group.VendorID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
		}

		charge := c.chargeForVendor(ctx, vendor, group.Subtotal, destCoord)
		result.PerVendor = append(result.PerVendor, charge)
		total = total.Add(charge.Charge)
	}

	result.Total = total.Round(2)
	return result, nil
}

func (c *calculator) chargeForVendor(ctx context.Context, vendor *models.Vendor, subtotal decimal.Decimal, destCoord *geo.Coordinate) VendorCharge {
	charge := VendorCharge{VendorID: vendor.ID, Charge: decimal.Zero}

	cfg := vendor.DeliveryConfig
	if cfg == nil || !cfg.Enabled || cfg.ChargeType == enums.DeliveryChargeTypeFree {
		return charge
	}

	distanceKm := c.distanceToVendor(ctx, vendor, destCoord)
	charge.DistanceKm = distanceKm

	waived := cfg.FreeAboveAmount != nil && subtotal.GreaterThanOrEqual(*cfg.FreeAboveAmount)

	switch cfg.ChargeType {
	case enums.DeliveryChargeTypeFlat:
		if !waived {
			charge.Charge = cfg.FlatCharge.Round(2)
		}
	case enums.DeliveryChargeTypePerKm:
		if waived || distanceKm == nil {
			return charge
		}
		billable := *distanceKm
		if cfg.MaxDeliveryKm != nil && billable > *cfg.MaxDeliveryKm {
			billable = *cfg.MaxDeliveryKm
		}
		charge.Charge = cfg.RatePerKm.Mul(decimal.NewFromFloat(billable)).Round(2)
	}

	return charge
}

// distanceToVendor resolves the driving distance from the vendor's
// pickup address to the destination, returning nil on any failure.
func (c *calculator) distanceToVendor(ctx context.Context, vendor *models.Vendor, destCoord *geo.Coordinate) *float64 {
	if destCoord == nil || vendor.PickupAddress == nil {
		return nil
	}

	pickupCoord := c.geocodeSoft(ctx, vendor.PickupAddress.Text())
	if pickupCoord == nil {
		return nil
	}

	km, err := c.router.RouteDistanceKm(ctx, *pickupCoord, *destCoord)
	if err != nil {
		if c.logg != nil {
			c.logg.Warn(ctx, fmt.Sprintf("route lookup failed for vendor %s: %v", vendor.ID, err))
		}
		return nil
	}
	return &km
}

func (c *calculator) geocodeSoft(ctx context.Context, address string) *geo.Coordinate {
	if address == "" {
		return nil
	}
	coord, err := c.geocoder.Geocode(ctx, address)
	if err != nil {
		if c.logg != nil {
			c.logg.Warn(ctx, fmt.Sprintf("geocode failed: %v", err))
		}
		return nil
	}
	return coord
}
