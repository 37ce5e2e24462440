package payment

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/bazarly/bazarly-backend/internal/api"
	"github.com/bazarly/bazarly-backend/internal/domain"
	"github.com/bazarly/bazarly-backend/internal/inventory"
	"github.com/bazarly/bazarly-backend/internal/orders"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type createPaymentRequest struct {
	UserID   string `json:"userId"`
	ShopID   string `json:"shopId"`
	Products []struct {
		ID       string  `json:"id"`
		Quantity int     `json:"quantity"`
		Price    float64 `json:"price"`
	} `json:"products"`
	Customer      domain.Customer `json:"customer"`
	TotalAmount   float64         `json:"totalAmount"`
	PaymentMethod string          `json:"paymentMethod"`
}

func (h *Handler) HandleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items := make([]domain.OrderItem, 0, len(req.Products))
	for _, p := range req.Products {
		items = append(items, domain.OrderItem{ProductID: p.ID, Quantity: p.Quantity, Price: p.Price})
	}

	redirectURL, err := h.service.Checkout(r.Context(), CheckoutInput{
		UserID:        req.UserID,
		ShopID:        req.ShopID,
		Items:         items,
		Customer:      req.Customer,
		TotalAmount:   req.TotalAmount,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	_ = api.Success(w, http.StatusOK, "Payment Intent Created", redirectURL)
}

func (h *Handler) writeCheckoutError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	var providerErr *ProviderError

	switch {
	case errors.As(err, &validationErr):
		_ = api.Error(w, http.StatusBadRequest, validationErr.Reason)
	case errors.Is(err, ErrInvalidPaymentMethod):
		_ = api.Error(w, http.StatusNotAcceptable, "Invalid Payment Method Selected")
	case errors.Is(err, inventory.ErrProductNotFound):
		_ = api.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, inventory.ErrInsufficientStock):
		_ = api.Error(w, http.StatusConflict, err.Error())
	case errors.As(err, &providerErr):
		// Gateway internals stay in the logs.
		_ = api.Error(w, http.StatusBadGateway, "Failed to Create Payment Intent")
	default:
		h.logger.Error("checkout failed", "error", err)
		_ = api.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handler) HandlePaymentSuccess(w http.ResponseWriter, r *http.Request) {
	h.handleCallback(w, r, h.service.Success, "Payment Success")
}

func (h *Handler) HandlePaymentFail(w http.ResponseWriter, r *http.Request) {
	h.handleCallback(w, r, h.service.Fail, "Payment failed")
}

func (h *Handler) HandlePaymentCancel(w http.ResponseWriter, r *http.Request) {
	h.handleCallback(w, r, h.service.Cancel, "Payment canceled")
}

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request, transition func(ctx context.Context, p CallbackPayload) (*domain.Order, error), message string) {
	payload, err := decodeCallback(r)
	if err != nil {
		_ = api.Error(w, http.StatusBadRequest, "Invalid callback payload")
		return
	}

	order, err := transition(r.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCallback):
			_ = api.Error(w, http.StatusBadRequest, "Invalid payment")
		case errors.Is(err, orders.ErrNotFound):
			_ = api.Error(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, orders.ErrStatusConflict):
			_ = api.Error(w, http.StatusConflict, "Order already settled")
		default:
			h.logger.Error("payment callback failed", "error", err, "tran_id", payload.TransactionID())
			_ = api.Error(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	_ = api.Success(w, http.StatusOK, message, order)
}

// decodeCallback accepts both JSON bodies and the form-encoded posts the
// gateways actually send.
func decodeCallback(r *http.Request) (CallbackPayload, error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if contentType == "application/json" {
		var payload CallbackPayload
		err := json.NewDecoder(r.Body).Decode(&payload)
		return payload, err
	}

	if err := r.ParseForm(); err != nil {
		return CallbackPayload{}, err
	}
	return CallbackPayload{
		TranID:    r.PostFormValue("tran_id"),
		MerTxnID:  r.PostFormValue("mer_txnid"),
		Status:    r.PostFormValue("status"),
		PayStatus: r.PostFormValue("pay_status"),
	}, nil
}
