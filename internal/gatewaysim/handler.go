// Package gatewaysim emulates the two payment gateways' session-init
// endpoints so the full checkout loop runs without external accounts.
package gatewaysim

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Handler struct {
	// pageURL is the base for the fake hosted payment pages returned to
	// the backend.
	pageURL string
	logger  *slog.Logger
}

func NewHandler(pageURL string, logger *slog.Logger) *Handler {
	return &Handler{pageURL: pageURL, logger: logger}
}

// HandleSSLCommerzInit mimics the v4 session API: form-encoded request,
// JSON response with GatewayPageURL.
func (h *Handler) HandleSSLCommerzInit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"status": "FAILED", "failedreason": "malformed form body"})
		return
	}

	tranID := r.PostFormValue("tran_id")
	if tranID == "" || r.PostFormValue("store_id") == "" {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "FAILED", "failedreason": "missing tran_id or store_id"})
		return
	}

	h.logger.Info("sslcommerz session created", "tran_id", tranID, "amount", r.PostFormValue("total_amount"))
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":         "SUCCESS",
		"GatewayPageURL": h.pageURL + "/pay/sslcommerz/" + tranID,
	})
}

// HandleAmarPayInit mimics the aamarpay JSON endpoint.
func (h *Handler) HandleAmarPayInit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TranID  string `json:"tran_id"`
		StoreID string `json:"store_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"result": "false"})
		return
	}

	if req.TranID == "" || req.StoreID == "" {
		h.writeJSON(w, http.StatusOK, map[string]string{"result": "false"})
		return
	}

	h.logger.Info("aamarpay session created", "tran_id", req.TranID)
	h.writeJSON(w, http.StatusOK, map[string]string{
		"result":      "true",
		"payment_url": h.pageURL + "/pay/aamarpay/" + req.TranID,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
