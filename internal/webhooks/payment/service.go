package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/rentkart/rentkart-backend/pkg/config"
	"github.com/rentkart/rentkart-backend/pkg/db/models"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
	"github.com/rentkart/rentkart-backend/pkg/logger"
)

// EventPaymentSucceeded confirms the referenced quotation into an order.
const EventPaymentSucceeded = "payment.succeeded"

// OrderConfirmer materializes a quotation into a rental order.
type OrderConfirmer interface {
	ConfirmFromQuotation(ctx context.Context, quotationID uuid.UUID) (*models.RentalOrder, error)
}

// Event is the payment provider's webhook payload.
type Event struct {
	Type        string    `json:"type"`
	QuotationID uuid.UUID `json:"quotation_id"`
	Reference   string    `json:"reference,omitempty"`
}

// Service verifies and processes payment provider webhooks.
type Service interface {
	Process(ctx context.Context, body []byte, signature string) (*models.RentalOrder, error)
}

type service struct {
	secret []byte
	orders OrderConfirmer
	logg   *logger.Logger
}

// NewService builds the webhook service.
func NewService(cfg config.PaymentConfig, orders OrderConfirmer, logg *logger.Logger) (Service, error) {
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("payment webhook secret required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order confirmer required")
	}
	return &service{
		secret: []byte(cfg.WebhookSecret),
		orders: orders,
		logg:   logg,
	}, nil
}

// Process authenticates the raw payload and, for a successful payment,
// confirms the referenced quotation. Confirmation is idempotent
// downstream, so a replayed webhook returns the existing order and the
// provider still sees success.
func (s *service) Process(ctx context.Context, body []byte, signature string) (*models.RentalOrder, error) {
	if err := s.verifySignature(body, signature); err != nil {
		return nil, err
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed webhook payload")
	}

	if event.Type != EventPaymentSucceeded {
		// Unknown event types are acknowledged without action so the
		// provider does not retry them forever.
		if s.logg != nil {
			logCtx := s.logg.WithField(ctx, "event_type", event.Type)
			s.logg.Info(logCtx, "ignoring unhandled payment event")
		}
		return nil, nil
	}
	if event.QuotationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quotation_id required")
	}

	order, err := s.orders.ConfirmFromQuotation(ctx, event.QuotationID)
	if err != nil {
		// A quotation that cannot be confirmed from its current status
		// (never sent, or cancelled) means there is nothing to do for
		// this payment. Acknowledge it so the provider stops retrying;
		// the vendor-facing confirm route still surfaces the conflict.
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeStateConflict {
			if s.logg != nil {
				logCtx := s.logg.WithField(ctx, "quotation_id", event.QuotationID.String())
				s.logg.Warn(logCtx, "payment webhook for unconfirmable quotation: "+typed.Message())
			}
			return nil, nil
		}
		return nil, err
	}
	return order, nil
}

// verifySignature checks the hex HMAC-SHA256 of the raw body against
// the shared webhook secret.
func (s *service) verifySignature(body []byte, signature string) error {
	if signature == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing webhook signature")
	}
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature")
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature")
	}
	return nil
}

// Sign computes the hex signature for a payload. Exposed for tests and
// local tooling that replays webhooks.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
