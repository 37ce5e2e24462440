// Package email is a development stand-in for the real email delivery
// collaborator: it accepts sends, simulates latency, and logs them.
package email

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"time"
)

type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

type sendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.To == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing recipient"})
		return
	}

	// Simulate provider latency.
	time.Sleep(time.Duration(30+rand.Intn(120)) * time.Millisecond)

	h.logger.Info("email sent", "to", req.To, "subject", req.Subject)
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
