package gatewaysim

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newTestHandler() *Handler {
	return NewHandler("http://pay.local", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleSSLCommerzInit(t *testing.T) {
	t.Run("returns a gateway page URL", func(t *testing.T) {
		form := url.Values{}
		form.Set("tran_id", "u1_1_ab")
		form.Set("store_id", "teststore")
		form.Set("total_amount", "450.00")

		req := httptest.NewRequest(http.MethodPost, "/gwprocess/v4/api.php", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()

		newTestHandler().HandleSSLCommerzInit(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not valid JSON: %v", err)
		}
		if body["status"] != "SUCCESS" {
			t.Errorf("unexpected status: %s", body["status"])
		}
		if body["GatewayPageURL"] != "http://pay.local/pay/sslcommerz/u1_1_ab" {
			t.Errorf("unexpected page URL: %s", body["GatewayPageURL"])
		}
	})

	t.Run("missing tran_id fails the session", func(t *testing.T) {
		form := url.Values{}
		form.Set("store_id", "teststore")

		req := httptest.NewRequest(http.MethodPost, "/gwprocess/v4/api.php", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()

		newTestHandler().HandleSSLCommerzInit(rec, req)

		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not valid JSON: %v", err)
		}
		if body["status"] != "FAILED" {
			t.Errorf("expected FAILED, got %s", body["status"])
		}
		if body["GatewayPageURL"] != "" {
			t.Errorf("expected no page URL, got %s", body["GatewayPageURL"])
		}
	})
}

func TestHandleAmarPayInit(t *testing.T) {
	t.Run("returns a payment URL", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/jsonpost.php",
			strings.NewReader(`{"tran_id":"u2_2_cd","store_id":"aamarpaytest"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		newTestHandler().HandleAmarPayInit(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not valid JSON: %v", err)
		}
		if body["result"] != "true" {
			t.Errorf("unexpected result: %s", body["result"])
		}
		if body["payment_url"] != "http://pay.local/pay/aamarpay/u2_2_cd" {
			t.Errorf("unexpected payment URL: %s", body["payment_url"])
		}
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/jsonpost.php", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()

		newTestHandler().HandleAmarPayInit(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
