package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bazarly/bazarly-backend/internal/domain"
)

// SSLCommerzConfig carries the store credentials and the callback URLs the
// gateway posts to after the customer leaves the hosted payment page.
type SSLCommerzConfig struct {
	BaseURL       string
	StoreID       string
	StorePassword string
	SuccessURL    string
	FailURL       string
	CancelURL     string
	IPNURL        string
}

// SSLCommerz initiates sessions against the SSLCommerz v4 API
// (form-encoded POST, JSON response carrying GatewayPageURL).
type SSLCommerz struct {
	cfg    SSLCommerzConfig
	client *http.Client
}

func NewSSLCommerz(cfg SSLCommerzConfig, client *http.Client) *SSLCommerz {
	return &SSLCommerz{cfg: cfg, client: client}
}

func (p *SSLCommerz) RequestRedirect(ctx context.Context, tranID string, customer domain.Customer, currency string, amount float64) (string, error) {
	form := url.Values{}
	form.Set("store_id", p.cfg.StoreID)
	form.Set("store_passwd", p.cfg.StorePassword)
	form.Set("total_amount", strconv.FormatFloat(amount, 'f', 2, 64))
	form.Set("currency", currency)
	form.Set("tran_id", tranID)
	form.Set("success_url", p.cfg.SuccessURL)
	form.Set("fail_url", p.cfg.FailURL)
	form.Set("cancel_url", p.cfg.CancelURL)
	form.Set("ipn_url", p.cfg.IPNURL)
	form.Set("shipping_method", "Courier")
	form.Set("product_name", "Order "+tranID)
	form.Set("product_category", "General")
	form.Set("product_profile", "general")
	form.Set("cus_name", customer.FullName())
	form.Set("cus_email", customer.Email)
	form.Set("cus_add1", customer.Address)
	form.Set("cus_phone", customer.Phone)
	form.Set("ship_name", customer.FullName())
	form.Set("ship_add1", customer.Address)
	form.Set("ship_city", "Dhaka")
	form.Set("ship_postcode", "1000")
	form.Set("ship_country", "Bangladesh")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &ProviderError{Provider: domain.PaymentMethodSSLCommerz, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: domain.PaymentMethodSSLCommerz, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			Provider: domain.PaymentMethodSSLCommerz,
			Err:      fmt.Errorf("gateway returned status %d", resp.StatusCode),
		}
	}

	var body struct {
		Status         string `json:"status"`
		FailedReason   string `json:"failedreason"`
		GatewayPageURL string `json:"GatewayPageURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &ProviderError{Provider: domain.PaymentMethodSSLCommerz, Err: err}
	}

	if body.Status != "SUCCESS" || body.GatewayPageURL == "" {
		reason := body.FailedReason
		if reason == "" {
			reason = "no gateway page URL in response"
		}
		return "", &ProviderError{Provider: domain.PaymentMethodSSLCommerz, Err: errors.New(reason)}
	}

	return body.GatewayPageURL, nil
}
