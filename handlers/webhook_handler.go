package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/copafacil/copa-manager/payments"
	"github.com/copafacil/copa-manager/services"
)

// WebhookHandler receives provider notifications. Responses are always 200:
// provisioning is idempotent and resumable, so retrying a failed delivery
// buys nothing, and error bodies would only leak internals to the provider.
type WebhookHandler struct {
	webhookService services.WebhookService
	logger         *slog.Logger
}

func NewWebhookHandler(webhookService services.WebhookService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService, logger: logger}
}

func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		h.logger.Error("failed to read stripe webhook body", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.webhookService.HandleStripe(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		h.logger.Error("stripe webhook processing failed", "error", err)
	}
	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) MercadoPago(w http.ResponseWriter, r *http.Request) {
	// Provider payloads carry many fields we do not model; decode loosely.
	var notification payments.WebhookNotification
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&notification); err != nil {
		h.logger.Error("failed to decode mercado pago webhook body", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	err := h.webhookService.HandleMercadoPago(
		r.Context(),
		notification,
		r.Header.Get("x-signature"),
		r.Header.Get("x-request-id"),
	)
	if err != nil {
		h.logger.Error("mercado pago webhook processing failed", "error", err)
	}
	w.WriteHeader(http.StatusOK)
}
