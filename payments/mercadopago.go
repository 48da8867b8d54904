package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const mercadoPagoBaseURL = "https://api.mercadopago.com"

var ErrMercadoPagoSignature = errors.New("mercado pago webhook signature mismatch")

// MercadoPagoClient is a thin REST client over the Mercado Pago API; only
// the preference and payment endpoints the checkout flow needs.
type MercadoPagoClient struct {
	accessToken   string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
}

func NewMercadoPagoClient(accessToken, webhookSecret string) *MercadoPagoClient {
	return &MercadoPagoClient{
		accessToken:   accessToken,
		webhookSecret: webhookSecret,
		baseURL:       mercadoPagoBaseURL,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

type mpPreferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type mpPreferenceRequest struct {
	Items    []mpPreferenceItem     `json:"items"`
	Payer    map[string]string      `json:"payer"`
	Metadata map[string]interface{} `json:"metadata"`
	BackURLs map[string]string      `json:"back_urls"`
}

type mpPreferenceResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// Payment is the canonical payment object fetched back after a webhook.
type Payment struct {
	ID                int64                  `json:"id"`
	Status            string                 `json:"status"`
	TransactionAmount float64                `json:"transaction_amount"`
	Metadata          map[string]interface{} `json:"metadata"`
	Payer             struct {
		Email string `json:"email"`
	} `json:"payer"`
}

// MetadataString reads a string value out of the payment metadata; Mercado
// Pago lower-cases metadata keys on the way back.
func (p *Payment) MetadataString(key string) string {
	if p.Metadata == nil {
		return ""
	}
	if v, ok := p.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// CreatePreference builds a hosted checkout preference and returns the
// redirect URL (init point).
func (c *MercadoPagoClient) CreatePreference(ctx context.Context, input CheckoutInput) (string, error) {
	reqBody := mpPreferenceRequest{
		Items: []mpPreferenceItem{
			{
				Title:      fmt.Sprintf("%s - %s", input.CampaignName, input.Plan.Name),
				Quantity:   1,
				UnitPrice:  float64(input.AmountCents) / 100,
				CurrencyID: "BRL",
			},
		},
		Payer: map[string]string{"email": input.Email},
		Metadata: map[string]interface{}{
			MetaCampaignSlug: input.Slug,
			MetaCampaignName: input.CampaignName,
			MetaPlanID:       string(input.Plan.ID),
			MetaMonths:       input.Plan.Months,
			MetaCouponCode:   input.CouponCode,
		},
		BackURLs: map[string]string{
			"success": input.SuccessURL,
			"failure": input.CancelURL,
		},
	}

	var resp mpPreferenceResponse
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", reqBody, &resp); err != nil {
		return "", err
	}
	return resp.InitPoint, nil
}

// GetPayment fetches the canonical payment object referenced by a webhook
// notification.
func (c *MercadoPagoClient) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var payment Payment
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *MercadoPagoClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode mercado pago request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create mercado pago request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mercado pago request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mercado pago returned status %d for %s %s", resp.StatusCode, method, path)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode mercado pago response: %w", err)
		}
	}
	return nil
}

// VerifySignature validates the x-signature header of a webhook
// notification. The signed manifest is
// "id:<data.id>;request-id:<x-request-id>;ts:<ts>;" keyed with the webhook
// secret.
func (c *MercadoPagoClient) VerifySignature(signatureHeader, requestID, dataID string) error {
	var ts, v1 string
	for _, part := range strings.Split(signatureHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "ts":
			ts = kv[1]
		case "v1":
			v1 = kv[1]
		}
	}
	if ts == "" || v1 == "" {
		return ErrMercadoPagoSignature
	}

	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", dataID, requestID, ts)
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(v1)) {
		return ErrMercadoPagoSignature
	}
	return nil
}

// WebhookNotification is the minimal body of a payment webhook.
type WebhookNotification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}
