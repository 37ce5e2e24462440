package orders

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bazarly/bazarly-backend/internal/api"
	"github.com/bazarly/bazarly-backend/internal/domain"
)

var orderSortable = map[string]string{
	"createdAt":   "created_at",
	"totalAmount": "total_amount",
	"status":      "status",
}

// Handler serves the administrative order surface: paginated listing and
// single-order read/update/delete. Order creation lives in the payment
// checkout flow.
type Handler struct {
	repo   *Repository
	logger *slog.Logger
}

func NewHandler(repo *Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		UserID: q.Get("userId"),
		ShopID: q.Get("shopId"),
		Status: domain.OrderStatus(q.Get("status")),
	}
	opts := api.ParsePageOptions(q, orderSortable, "created_at")

	result, total, err := h.repo.List(r.Context(), filter, opts)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		_ = api.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	_ = api.SuccessList(w, "Orders fetched", result, api.NewMeta(opts, total))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = api.Error(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.Error("failed to get order", "error", err, "order_id", id)
		_ = api.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	_ = api.Success(w, http.StatusOK, "Order fetched", order)
}

type updateOrderRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch req.Status {
	case domain.OrderStatusPending, domain.OrderStatusCompleted, domain.OrderStatusFailed, domain.OrderStatusCanceled:
	default:
		_ = api.Error(w, http.StatusBadRequest, "Invalid order status")
		return
	}

	order, err := h.repo.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			_ = api.Error(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, ErrStatusConflict):
			_ = api.Error(w, http.StatusConflict, "Order already settled")
		default:
			h.logger.Error("failed to update order", "error", err, "order_id", id)
			_ = api.Error(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.logger.Info("order status updated", "order_id", id, "status", order.Status)
	_ = api.Success(w, http.StatusOK, "Order updated", order)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.repo.SoftDelete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			_ = api.Error(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, ErrNotDeletable):
			_ = api.Error(w, http.StatusConflict, "Order can no longer be deleted")
		default:
			h.logger.Error("failed to delete order", "error", err, "order_id", id)
			_ = api.Error(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.logger.Info("order deleted", "order_id", id)
	_ = api.Success(w, http.StatusOK, "Order deleted", nil)
}
