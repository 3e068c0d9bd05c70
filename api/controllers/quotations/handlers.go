package quotations

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rentkart/rentkart-backend/api/middleware"
	"github.com/rentkart/rentkart-backend/api/responses"
	"github.com/rentkart/rentkart-backend/api/validators"
	ordersvc "github.com/rentkart/rentkart-backend/internal/orders"
	quotationsvc "github.com/rentkart/rentkart-backend/internal/quotations"
	"github.com/rentkart/rentkart-backend/pkg/enums"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
	"github.com/rentkart/rentkart-backend/pkg/logger"
)

type submitRequest struct {
	FulfillmentType   string  `json:"fulfillment_type" validate:"required,oneof=store_pickup delivery"`
	DeliveryAddress   string  `json:"delivery_address"`
	DeliveryAddressID *string `json:"delivery_address_id" validate:"omitempty,uuid"`
	BillingAddressID  *string `json:"billing_address_id" validate:"omitempty,uuid"`
	CouponCode        string  `json:"coupon_code"`
}

type listResponse struct {
	Quotations any    `json:"quotations"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// CustomerSubmit splits the customer's cart into per-vendor quotations.
func CustomerSubmit(svc quotationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
			return
		}

		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body submitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := quotationsvc.SubmitInput{
			CustomerID:      customerID,
			FulfillmentType: enums.FulfillmentType(body.FulfillmentType),
			DeliveryAddress: body.DeliveryAddress,
			CouponCode:      body.CouponCode,
		}
		if body.DeliveryAddressID != nil {
			addressID, err := validators.ParseUUIDBody(*body.DeliveryAddressID, "delivery_address_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.DeliveryAddressID = &addressID
		}
		if body.BillingAddressID != nil {
			addressID, err := validators.ParseUUIDBody(*body.BillingAddressID, "billing_address_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.BillingAddressID = &addressID
		}

		result, err := svc.Submit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func CustomerList(svc quotationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
			return
		}

		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, next, err := svc.ListForCustomer(r.Context(), customerID, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listResponse{Quotations: rows, NextCursor: next})
	}
}

func CustomerDetail(svc quotationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
			return
		}

		customerID, err := customerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quotationID, err := validators.ParseUUIDParam(r, "quotationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quotation, err := svc.GetForCustomer(r.Context(), quotationID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quotation)
	}
}

func VendorList(svc quotationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
			return
		}

		vendorID, err := vendorIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, next, err := svc.ListForVendor(r.Context(), vendorID, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listResponse{Quotations: rows, NextCursor: next})
	}
}

func VendorDetail(svc quotationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
			return
		}

		vendorID, err := vendorIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quotationID, err := validators.ParseUUIDParam(r, "quotationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quotation, err := svc.GetForVendor(r.Context(), quotationID, vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quotation)
	}
}

// VendorSend moves a draft quotation to sent.
func VendorSend(svc quotationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
			return
		}

		vendorID, quotationID, err := vendorAndQuotation(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Send(r.Context(), quotationID, vendorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

// VendorCancel voids a quotation that has not been confirmed.
func VendorCancel(svc quotationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable"))
			return
		}

		vendorID, quotationID, err := vendorAndQuotation(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Cancel(r.Context(), quotationID, vendorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

// VendorConfirm converts a sent quotation into a rental order on behalf
// of the vendor, for payments settled outside the platform. The order
// path is idempotent, so retries return the existing order.
func VendorConfirm(quotations quotationsvc.Service, orders ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if quotations == nil || orders == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		vendorID, quotationID, err := vendorAndQuotation(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Ownership gate; status is re-validated under lock downstream.
		if _, err := quotations.GetForVendor(r.Context(), quotationID, vendorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := orders.ConfirmFromQuotation(r.Context(), quotationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func vendorAndQuotation(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	vendorID, err := vendorIDFromContext(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	quotationID, err := validators.ParseUUIDParam(r, "quotationId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return vendorID, quotationID, nil
}

func customerIDFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func vendorIDFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.VendorIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vendor id")
	}
	return id, nil
}
