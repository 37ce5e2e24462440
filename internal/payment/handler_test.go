package payment

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/bazarly/bazarly-backend/internal/domain"
)

func newTestHandler(store *fakeOrderStore, stock *fakeStock, provider Provider) *Handler {
	service := newTestService(store, stock, provider)
	return NewHandler(service, service.logger)
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var env map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return env
}

func checkoutBody() map[string]any {
	return map[string]any{
		"userId": "user-1",
		"shopId": "shop-1",
		"products": []map[string]any{
			{"id": "p1", "quantity": 2, "price": 10},
		},
		"customer": map[string]string{
			"firstName": "Rifat",
			"lastName":  "Hossain",
			"email":     "rifat@example.com",
			"phone":     "01700000000",
			"address":   "Dhaka",
		},
		"totalAmount":   20,
		"paymentMethod": "SSLCommerz",
	}
}

func TestHandler_CreatePayment(t *testing.T) {
	t.Run("returns redirect URL in envelope", func(t *testing.T) {
		store := newFakeOrderStore()
		stock := &fakeStock{inventory: map[string]int{"p1": 5}}
		handler := newTestHandler(store, stock, &fakeProvider{url: "https://gw.example.com/pay/1"})

		rec := postJSON(t, handler.HandleCreatePayment, "/api/payment/create-payment", checkoutBody())

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		env := decodeEnvelope(t, rec)
		if env["success"] != true {
			t.Error("expected success=true")
		}
		if env["message"] != "Payment Intent Created" {
			t.Errorf("unexpected message: %v", env["message"])
		}
		if env["data"] != "https://gw.example.com/pay/1" {
			t.Errorf("unexpected data: %v", env["data"])
		}
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		handler := newTestHandler(newFakeOrderStore(), &fakeStock{}, &fakeProvider{url: "x"})

		req := httptest.NewRequest(http.MethodPost, "/api/payment/create-payment", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		handler.HandleCreatePayment(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("missing fields are a 400 with the reason", func(t *testing.T) {
		handler := newTestHandler(newFakeOrderStore(), &fakeStock{}, &fakeProvider{url: "x"})

		body := checkoutBody()
		body["userId"] = ""
		rec := postJSON(t, handler.HandleCreatePayment, "/api/payment/create-payment", body)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		env := decodeEnvelope(t, rec)
		if env["message"] != "userId is required" {
			t.Errorf("unexpected message: %v", env["message"])
		}
	})

	t.Run("unknown payment method is a 406", func(t *testing.T) {
		handler := newTestHandler(newFakeOrderStore(), &fakeStock{inventory: map[string]int{"p1": 5}}, &fakeProvider{url: "x"})

		body := checkoutBody()
		body["paymentMethod"] = "Nagad"
		rec := postJSON(t, handler.HandleCreatePayment, "/api/payment/create-payment", body)

		if rec.Code != http.StatusNotAcceptable {
			t.Fatalf("expected 406, got %d", rec.Code)
		}
		env := decodeEnvelope(t, rec)
		if env["message"] != "Invalid Payment Method Selected" {
			t.Errorf("unexpected message: %v", env["message"])
		}
	})

	t.Run("unknown product is a 404", func(t *testing.T) {
		handler := newTestHandler(newFakeOrderStore(), &fakeStock{inventory: map[string]int{}}, &fakeProvider{url: "x"})

		rec := postJSON(t, handler.HandleCreatePayment, "/api/payment/create-payment", checkoutBody())

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("insufficient stock is a 409", func(t *testing.T) {
		handler := newTestHandler(newFakeOrderStore(), &fakeStock{inventory: map[string]int{"p1": 1}}, &fakeProvider{url: "x"})

		rec := postJSON(t, handler.HandleCreatePayment, "/api/payment/create-payment", checkoutBody())

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("gateway failure is a 502 without internals", func(t *testing.T) {
		provider := &fakeProvider{err: &ProviderError{
			Provider: domain.PaymentMethodSSLCommerz,
			Err:      http.ErrHandlerTimeout,
		}}
		handler := newTestHandler(newFakeOrderStore(), &fakeStock{inventory: map[string]int{"p1": 5}}, provider)

		rec := postJSON(t, handler.HandleCreatePayment, "/api/payment/create-payment", checkoutBody())

		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}
		env := decodeEnvelope(t, rec)
		if env["message"] != "Failed to Create Payment Intent" {
			t.Errorf("unexpected message: %v", env["message"])
		}
		if strings.Contains(rec.Body.String(), "timeout") {
			t.Error("gateway error detail leaked to the client")
		}
	})
}

func TestHandler_Callbacks(t *testing.T) {
	seedPending := func(t *testing.T) (*fakeOrderStore, string) {
		t.Helper()
		store := newFakeOrderStore()
		order := &domain.Order{UserID: "user-1", TranID: "user-1_1_ab"}
		if err := store.CreatePending(t.Context(), order); err != nil {
			t.Fatalf("failed to seed order: %v", err)
		}
		return store, order.TranID
	}

	t.Run("JSON success callback completes the order", func(t *testing.T) {
		store, tranID := seedPending(t)
		handler := newTestHandler(store, &fakeStock{}, &fakeProvider{url: "x"})

		rec := postJSON(t, handler.HandlePaymentSuccess, "/api/payment/payment-success", map[string]string{
			"tran_id": tranID,
			"status":  "VALID",
		})

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		env := decodeEnvelope(t, rec)
		if env["message"] != "Payment Success" {
			t.Errorf("unexpected message: %v", env["message"])
		}
		if store.byTranID[tranID].Status != domain.OrderStatusCompleted {
			t.Errorf("order not completed: %s", store.byTranID[tranID].Status)
		}
	})

	t.Run("form-encoded callback is decoded", func(t *testing.T) {
		store, tranID := seedPending(t)
		handler := newTestHandler(store, &fakeStock{}, &fakeProvider{url: "x"})

		form := url.Values{}
		form.Set("mer_txnid", tranID)
		form.Set("pay_status", "Successful")
		req := httptest.NewRequest(http.MethodPost, "/api/payment/payment-success", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := httptest.NewRecorder()
		handler.HandlePaymentSuccess(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if store.byTranID[tranID].Status != domain.OrderStatusCompleted {
			t.Errorf("order not completed: %s", store.byTranID[tranID].Status)
		}
	})

	t.Run("success without a valid assertion is a 400", func(t *testing.T) {
		store, tranID := seedPending(t)
		handler := newTestHandler(store, &fakeStock{}, &fakeProvider{url: "x"})

		rec := postJSON(t, handler.HandlePaymentSuccess, "/api/payment/payment-success", map[string]string{
			"tran_id": tranID,
			"status":  "FAILED",
		})

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if store.byTranID[tranID].Status != domain.OrderStatusPending {
			t.Errorf("order should stay pending, got %s", store.byTranID[tranID].Status)
		}
	})

	t.Run("unknown transaction is a 404", func(t *testing.T) {
		handler := newTestHandler(newFakeOrderStore(), &fakeStock{}, &fakeProvider{url: "x"})

		rec := postJSON(t, handler.HandlePaymentFail, "/api/payment/payment-fail", map[string]string{
			"tran_id": "missing",
			"status":  "FAILED",
		})

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("conflicting settlement is a 409", func(t *testing.T) {
		store, tranID := seedPending(t)
		handler := newTestHandler(store, &fakeStock{}, &fakeProvider{url: "x"})

		rec := postJSON(t, handler.HandlePaymentSuccess, "/api/payment/payment-success", map[string]string{
			"tran_id": tranID,
			"status":  "VALID",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("setup settle failed: %d", rec.Code)
		}

		rec = postJSON(t, handler.HandlePaymentFail, "/api/payment/payment-fail", map[string]string{
			"tran_id": tranID,
			"status":  "FAILED",
		})
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		env := decodeEnvelope(t, rec)
		if env["message"] != "Order already settled" {
			t.Errorf("unexpected message: %v", env["message"])
		}
	})

	t.Run("cancel settles without a status assertion", func(t *testing.T) {
		store, tranID := seedPending(t)
		handler := newTestHandler(store, &fakeStock{}, &fakeProvider{url: "x"})

		rec := postJSON(t, handler.HandlePaymentCancel, "/api/payment/payment-cancel", map[string]string{
			"tran_id": tranID,
		})

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if store.byTranID[tranID].Status != domain.OrderStatusCanceled {
			t.Errorf("order not canceled: %s", store.byTranID[tranID].Status)
		}
	})
}
