package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	payment "github.com/rentkart/rentkart-backend/internal/webhooks/payment"
	"github.com/rentkart/rentkart-backend/pkg/config"
	"github.com/rentkart/rentkart-backend/pkg/db/models"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
)

type stubPaymentService struct {
	order     *models.RentalOrder
	err       error
	signature string
}

func (s *stubPaymentService) Process(ctx context.Context, body []byte, signature string) (*models.RentalOrder, error) {
	s.signature = signature
	return s.order, s.err
}

func TestPaymentWebhookConfirmsOrder(t *testing.T) {
	order := &models.RentalOrder{ID: uuid.New()}
	svc := &stubPaymentService{order: order}
	handler := PaymentWebhook(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(`{"event":"payment.succeeded"}`))
	req.Header.Set("X-Signature", "sig")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.signature != "sig" {
		t.Fatalf("signature header not forwarded, got %q", svc.signature)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["order_id"] != order.ID.String() {
		t.Fatalf("unexpected order id: %s", envelope.Data["order_id"])
	}
}

func TestPaymentWebhookAcksWithoutOrder(t *testing.T) {
	handler := PaymentWebhook(&stubPaymentService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(`{"event":"payment.pending"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPaymentWebhookRejectsBadSignature(t *testing.T) {
	svc := &stubPaymentService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid signature")}
	handler := PaymentWebhook(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

type conflictConfirmer struct{}

func (conflictConfirmer) ConfirmFromQuotation(ctx context.Context, quotationID uuid.UUID) (*models.RentalOrder, error) {
	return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quotation cannot be confirmed from status draft")
}

// A paid-for quotation that was never sent (or was cancelled) leaves
// nothing to confirm; the provider must still see success or it will
// retry the delivery forever.
func TestPaymentWebhookAcksUnconfirmableQuotation(t *testing.T) {
	const secret = "whsec_handler_test"
	svc, err := payment.NewService(config.PaymentConfig{WebhookSecret: secret}, conflictConfirmer{}, nil)
	if err != nil {
		t.Fatalf("build webhook service: %v", err)
	}
	handler := PaymentWebhook(svc, nil)

	body, err := json.Marshal(payment.Event{Type: payment.EventPaymentSucceeded, QuotationID: uuid.New()})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader(body))
	req.Header.Set("X-Signature", payment.Sign(secret, body))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPaymentWebhookUnconfigured(t *testing.T) {
	handler := PaymentWebhook(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
