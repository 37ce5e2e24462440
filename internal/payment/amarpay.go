package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bazarly/bazarly-backend/internal/domain"
)

type AmarPayConfig struct {
	BaseURL      string
	StoreID      string
	SignatureKey string
	SuccessURL   string
	FailURL      string
	CancelURL    string
}

// AmarPay initiates sessions against the aamarpay JSON endpoint, which
// responds with a payment_url to redirect the customer to.
type AmarPay struct {
	cfg    AmarPayConfig
	client *http.Client
}

func NewAmarPay(cfg AmarPayConfig, client *http.Client) *AmarPay {
	return &AmarPay{cfg: cfg, client: client}
}

func (p *AmarPay) RequestRedirect(ctx context.Context, tranID string, customer domain.Customer, currency string, amount float64) (string, error) {
	payload := map[string]any{
		"store_id":      p.cfg.StoreID,
		"signature_key": p.cfg.SignatureKey,
		"tran_id":       tranID,
		"amount":        amount,
		"currency":      currency,
		"desc":          "Order " + tranID,
		"cus_name":      customer.FullName(),
		"cus_email":     customer.Email,
		"cus_phone":     customer.Phone,
		"cus_add1":      customer.Address,
		"cus_city":      "Dhaka",
		"cus_country":   "Bangladesh",
		"success_url":   p.cfg.SuccessURL,
		"fail_url":      p.cfg.FailURL,
		"cancel_url":    p.cfg.CancelURL,
		// The endpoint only answers JSON when asked to.
		"type": "json",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", &ProviderError{Provider: domain.PaymentMethodAmarPay, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL, bytes.NewReader(data))
	if err != nil {
		return "", &ProviderError{Provider: domain.PaymentMethodAmarPay, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: domain.PaymentMethodAmarPay, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			Provider: domain.PaymentMethodAmarPay,
			Err:      fmt.Errorf("gateway returned status %d", resp.StatusCode),
		}
	}

	var body struct {
		PaymentURL string `json:"payment_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &ProviderError{Provider: domain.PaymentMethodAmarPay, Err: err}
	}

	if body.PaymentURL == "" {
		return "", &ProviderError{Provider: domain.PaymentMethodAmarPay, Err: errors.New("no payment URL in response")}
	}

	return body.PaymentURL, nil
}
