package webhooks

import (
	"io"
	"net/http"

	"github.com/rentkart/rentkart-backend/api/responses"
	payment "github.com/rentkart/rentkart-backend/internal/webhooks/payment"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
	"github.com/rentkart/rentkart-backend/pkg/logger"
)

const signatureHeader = "X-Signature"

// PaymentWebhook ingests payment provider events. The raw body is
// passed through untouched so the HMAC check sees exactly what was
// signed.
func PaymentWebhook(svc payment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		order, err := svc.Process(ctx, body, r.Header.Get(signatureHeader))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if order == nil {
			// Event acknowledged without action.
			responses.WriteSuccess(w, nil)
			return
		}

		if logg != nil {
			logCtx := logg.WithField(ctx, "order_id", order.ID.String())
			logg.Info(logCtx, "payment webhook processed")
		}
		responses.WriteSuccess(w, map[string]string{"order_id": order.ID.String()})
	}
}
