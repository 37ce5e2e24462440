package inventory

import (
	"log/slog"
	"net/http"

	"github.com/bazarly/bazarly-backend/internal/api"
)

type Handler struct {
	ledger *Ledger
	logger *slog.Logger
}

func NewHandler(ledger *Ledger, logger *slog.Logger) *Handler {
	return &Handler{ledger: ledger, logger: logger}
}

func (h *Handler) HandleListStock(w http.ResponseWriter, r *http.Request) {
	levels, err := h.ledger.ListStock(r.Context())
	if err != nil {
		h.logger.Error("failed to list stock", "error", err)
		_ = api.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	_ = api.Success(w, http.StatusOK, "Stock levels fetched", levels)
}

func (h *Handler) HandleGetStock(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	if productID == "" {
		_ = api.Error(w, http.StatusBadRequest, "Missing product id")
		return
	}

	stock, err := h.ledger.GetStock(r.Context(), productID)
	if err != nil {
		h.logger.Error("failed to get stock", "error", err, "product_id", productID)
		_ = api.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if stock == nil {
		_ = api.Error(w, http.StatusNotFound, "Product not found")
		return
	}

	_ = api.Success(w, http.StatusOK, "Stock level fetched", stock)
}
