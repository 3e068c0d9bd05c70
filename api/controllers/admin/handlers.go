package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentkart/rentkart-backend/api/responses"
	"github.com/rentkart/rentkart-backend/api/validators"
	"github.com/rentkart/rentkart-backend/internal/coupons"
	"github.com/rentkart/rentkart-backend/internal/products"
	"github.com/rentkart/rentkart-backend/internal/vendors"
	"github.com/rentkart/rentkart-backend/pkg/enums"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
	"github.com/rentkart/rentkart-backend/pkg/logger"
)

type createCouponRequest struct {
	Code        string    `json:"code" validate:"required"`
	Type        string    `json:"type" validate:"required,oneof=flat percentage"`
	Value       string    `json:"value" validate:"required"`
	MaxDiscount *string   `json:"max_discount"`
	ValidFrom   time.Time `json:"valid_from" validate:"required"`
	ValidUntil  time.Time `json:"valid_until" validate:"required"`
}

type updateCouponRequest struct {
	Value       *string    `json:"value"`
	MaxDiscount *string    `json:"max_discount"`
	Active      *bool      `json:"active"`
	ValidFrom   *time.Time `json:"valid_from"`
	ValidUntil  *time.Time `json:"valid_until"`
}

type createPeriodRequest struct {
	Duration int    `json:"duration" validate:"required,min=1"`
	Unit     string `json:"unit" validate:"required,oneof=hour day week month year"`
	Active   bool   `json:"active"`
}

// CouponCreate registers a platform coupon.
func CouponCreate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var body createCouponRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		value, err := parseDecimalField(body.Value, "value")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := coupons.CreateInput{
			Code:       body.Code,
			Type:       enums.CouponType(body.Type),
			Value:      value,
			ValidFrom:  body.ValidFrom,
			ValidUntil: body.ValidUntil,
		}
		if body.MaxDiscount != nil {
			max, err := parseDecimalField(*body.MaxDiscount, "max_discount")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.MaxDiscount = &max
		}

		coupon, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

func CouponUpdate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		couponID, err := validators.ParseUUIDParam(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateCouponRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := coupons.UpdateInput{
			Active:     body.Active,
			ValidFrom:  body.ValidFrom,
			ValidUntil: body.ValidUntil,
		}
		if body.Value != nil {
			value, err := parseDecimalField(*body.Value, "value")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Value = &value
		}
		if body.MaxDiscount != nil {
			max, err := parseDecimalField(*body.MaxDiscount, "max_discount")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.MaxDiscount = &max
		}

		if err := svc.Update(r.Context(), couponID, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

func CouponDelete(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		couponID, err := validators.ParseUUIDParam(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), couponID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

func CouponList(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// VendorBlock suspends a vendor from receiving new quotations.
func VendorBlock(list vendors.Blocklist, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if list == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "blocklist unavailable"))
			return
		}

		vendorID, err := validators.ParseUUIDParam(r, "vendorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := list.Block(r.Context(), vendorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

func VendorUnblock(list vendors.Blocklist, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if list == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "blocklist unavailable"))
			return
		}

		vendorID, err := validators.ParseUUIDParam(r, "vendorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := list.Unblock(r.Context(), vendorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

func VendorListBlocked(list vendors.Blocklist, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if list == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "blocklist unavailable"))
			return
		}

		ids, err := list.ListBlocked(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"vendor_ids": ids})
	}
}

// VendorList returns every vendor profile for the back office.
func VendorList(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// PeriodCreate defines a rental billing unit (e.g. 1 day, 1 week).
func PeriodCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var body createPeriodRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		period, err := svc.CreatePeriod(r.Context(), products.PeriodInput{
			Duration: body.Duration,
			Unit:     enums.RentalUnit(body.Unit),
			Active:   body.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, period)
	}
}

func PeriodList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		periods, err := svc.ListPeriods(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, periods)
	}
}

func parseDecimalField(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "field must be a decimal string").
			WithDetails(map[string]any{"field": field})
	}
	return value, nil
}
