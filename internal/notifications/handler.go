// Package notifications turns settled-payment events into customer emails.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bazarly/bazarly-backend/internal/domain"
)

type Handler struct {
	emailServiceURL string
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewHandler(emailServiceURL string, client *http.Client, logger *slog.Logger) *Handler {
	return &Handler{
		emailServiceURL: emailServiceURL,
		httpClient:      client,
		logger:          logger,
	}
}

// Handle consumes a PaymentSettledEvent and sends the matching email.
func (h *Handler) Handle(ctx context.Context, payload []byte) error {
	var event domain.PaymentSettledEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal payment settled event: %w", err)
	}

	h.logger.Info("processing payment settled event", "order_id", event.OrderID, "status", event.Status)

	var subject, body string
	switch event.Status {
	case domain.OrderStatusCompleted:
		subject = "Payment received for order " + event.OrderID
		body = fmt.Sprintf("We received your payment of %.2f BDT. Your order %s is confirmed.", event.TotalAmount, event.OrderID)
	case domain.OrderStatusFailed:
		subject = "Payment failed for order " + event.OrderID
		body = fmt.Sprintf("The payment for order %s failed. No money was charged; please try again.", event.OrderID)
	case domain.OrderStatusCanceled:
		subject = "Order " + event.OrderID + " canceled"
		body = fmt.Sprintf("You canceled the payment for order %s.", event.OrderID)
	default:
		h.logger.Warn("ignoring event with non-terminal status", "order_id", event.OrderID, "status", event.Status)
		return nil
	}

	if err := h.sendEmail(ctx, event.UserID+"@example.com", subject, body); err != nil {
		return fmt.Errorf("send email for order %s: %w", event.OrderID, err)
	}

	h.logger.Info("notification sent", "order_id", event.OrderID)
	return nil
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	data, err := json.Marshal(map[string]string{
		"to":      to,
		"subject": subject,
		"body":    body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	return nil
}
