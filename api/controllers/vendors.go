package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rentkart/rentkart-backend/api/responses"
	"github.com/rentkart/rentkart-backend/api/validators"
	"github.com/rentkart/rentkart-backend/internal/vendors"
	"github.com/rentkart/rentkart-backend/pkg/enums"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
	"github.com/rentkart/rentkart-backend/pkg/logger"
)

type addressRequest struct {
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2"`
	City       string  `json:"city" validate:"required"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
}

type vendorRegisterRequest struct {
	Name          string          `json:"name" validate:"required"`
	CompanyName   *string         `json:"company_name"`
	Email         string          `json:"email" validate:"required,email"`
	Phone         *string         `json:"phone"`
	PickupAddress *addressRequest `json:"pickup_address"`
}

type deliveryConfigRequest struct {
	Enabled         bool    `json:"enabled"`
	ChargeType      string  `json:"charge_type" validate:"required,oneof=free flat per_km"`
	FlatCharge      string  `json:"flat_charge"`
	RatePerKm       string  `json:"rate_per_km"`
	MaxDeliveryKm   *float64 `json:"max_delivery_km"`
	FreeAboveAmount *string  `json:"free_above_amount"`
}

// VendorRegister creates the vendor profile owned by the calling user.
// The vendor id is bound into fresh tokens on the next login.
func VendorRegister(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		ownerID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body vendorRegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := vendors.RegisterInput{
			Name:        body.Name,
			CompanyName: body.CompanyName,
			Email:       body.Email,
			Phone:       body.Phone,
		}
		if body.PickupAddress != nil {
			input.PickupAddress = &vendors.AddressInput{
				Line1:      body.PickupAddress.Line1,
				Line2:      body.PickupAddress.Line2,
				City:       body.PickupAddress.City,
				State:      body.PickupAddress.State,
				PostalCode: body.PickupAddress.PostalCode,
				Country:    body.PickupAddress.Country,
			}
		}

		vendor, err := svc.Register(r.Context(), ownerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, vendor)
	}
}

// VendorProfile returns the vendor owned by the calling user.
func VendorProfile(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		ownerID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendor, err := svc.GetByOwner(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vendor)
	}
}

// VendorConfigureDelivery sets the vendor's delivery billing policy.
func VendorConfigureDelivery(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		vendorID, err := vendorIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body deliveryConfigRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := vendors.DeliveryConfigInput{
			Enabled:       body.Enabled,
			ChargeType:    enums.DeliveryChargeType(body.ChargeType),
			MaxDeliveryKm: body.MaxDeliveryKm,
		}
		if input.FlatCharge, err = parseOptionalDecimal(body.FlatCharge, "flat_charge"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.RatePerKm, err = parseOptionalDecimal(body.RatePerKm, "rate_per_km"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.FreeAboveAmount != nil {
			amount, err := parseOptionalDecimal(*body.FreeAboveAmount, "free_above_amount")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.FreeAboveAmount = &amount
		}

		if err := svc.ConfigureDelivery(r.Context(), vendorID, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

func parseOptionalDecimal(raw, field string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "field must be a decimal string").
			WithDetails(map[string]any{"field": field})
	}
	return value, nil
}
