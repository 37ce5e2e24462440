package catalog

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bazarly/bazarly-backend/internal/api"
	"github.com/bazarly/bazarly-backend/internal/domain"
)

var productSortable = map[string]string{
	"createdAt": "created_at",
	"name":      "name",
	"price":     "price",
}

type Handler struct {
	repo   *Repository
	logger *slog.Logger
}

func NewHandler(repo *Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

type createProductRequest struct {
	ShopID    string  `json:"shopId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Inventory int     `json:"inventory"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch {
	case req.ShopID == "":
		_ = api.Error(w, http.StatusBadRequest, "shopId is required")
		return
	case req.Name == "":
		_ = api.Error(w, http.StatusBadRequest, "name is required")
		return
	case req.Price < 0:
		_ = api.Error(w, http.StatusBadRequest, "price must not be negative")
		return
	case req.Inventory < 0:
		_ = api.Error(w, http.StatusBadRequest, "inventory must not be negative")
		return
	}

	product := &domain.Product{
		ShopID:    req.ShopID,
		Name:      req.Name,
		Price:     req.Price,
		Inventory: req.Inventory,
	}
	if err := h.repo.Create(r.Context(), product); err != nil {
		h.logger.Error("failed to create product", "error", err)
		_ = api.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("product created", "product_id", product.ID, "shop_id", product.ShopID)
	_ = api.Success(w, http.StatusCreated, "Product created", product)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		SearchTerm: q.Get("searchTerm"),
		ShopID:     q.Get("shopId"),
	}
	opts := api.ParsePageOptions(q, productSortable, "created_at")

	products, total, err := h.repo.List(r.Context(), filter, opts)
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		_ = api.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	_ = api.SuccessList(w, "Products fetched", products, api.NewMeta(opts, total))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	product, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = api.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("failed to get product", "error", err)
		_ = api.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	_ = api.Success(w, http.StatusOK, "Product fetched", product)
}

type updateProductRequest struct {
	Name      *string  `json:"name"`
	Price     *float64 `json:"price"`
	Inventory *int     `json:"inventory"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Price != nil && *req.Price < 0 {
		_ = api.Error(w, http.StatusBadRequest, "price must not be negative")
		return
	}
	if req.Inventory != nil && *req.Inventory < 0 {
		_ = api.Error(w, http.StatusBadRequest, "inventory must not be negative")
		return
	}

	product, err := h.repo.Update(r.Context(), id, Update{
		Name:      req.Name,
		Price:     req.Price,
		Inventory: req.Inventory,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = api.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("failed to update product", "error", err, "product_id", id)
		_ = api.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	_ = api.Success(w, http.StatusOK, "Product updated", product)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = api.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("failed to delete product", "error", err, "product_id", id)
		_ = api.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("product deleted", "product_id", id)
	_ = api.Success(w, http.StatusOK, "Product deleted", nil)
}
