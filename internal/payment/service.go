package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bazarly/bazarly-backend/internal/domain"
	"github.com/bazarly/bazarly-backend/internal/inventory"
	"github.com/bazarly/bazarly-backend/internal/telemetry"
)

// Currency is fixed for all supported gateways.
const Currency = "BDT"

// ErrInvalidCallback is returned when a success/fail callback payload does
// not assert the matching provider status.
var ErrInvalidCallback = errors.New("invalid callback payload")

// ValidationError marks a malformed checkout request. It is reported to
// the caller as a 4xx with the reason verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// OrderStore is the slice of the order repository the workflow needs.
type OrderStore interface {
	CreatePending(ctx context.Context, order *domain.Order) error
	Settle(ctx context.Context, tranID string, status domain.OrderStatus) (*domain.Order, error)
}

// StockChecker is the inventory ledger's advisory availability check.
type StockChecker interface {
	CheckAvailability(ctx context.Context, productID string, qty int) error
}

// EventPublisher emits domain events; publishing is best effort and never
// fails the workflow.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Service struct {
	registry *Registry
	orders   OrderStore
	stock    StockChecker
	placed   EventPublisher
	settled  EventPublisher
	metrics  *telemetry.PaymentMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the checkout workflow. placed and settled may be nil
// when no broker is configured.
func NewService(registry *Registry, orders OrderStore, stock StockChecker, placed, settled EventPublisher, metrics *telemetry.PaymentMetrics, logger *slog.Logger) *Service {
	return &Service{
		registry: registry,
		orders:   orders,
		stock:    stock,
		placed:   placed,
		settled:  settled,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

type CheckoutInput struct {
	UserID        string
	ShopID        string
	Items         []domain.OrderItem
	Customer      domain.Customer
	TotalAmount   float64
	PaymentMethod domain.PaymentMethod
}

// Checkout runs the order-creation workflow and returns the gateway
// redirect URL.
//
// The gateway intent is requested BEFORE the database transaction so no
// transaction stays open across a network round trip. If the transaction
// then fails, the intent is orphaned: gateway sessions expire unused and
// no order row references them, so this is safe.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (string, error) {
	if err := in.validate(); err != nil {
		s.metrics.CheckoutFailed(ctx, "validation")
		return "", err
	}

	provider, err := s.registry.Lookup(in.PaymentMethod)
	if err != nil {
		s.metrics.CheckoutFailed(ctx, "invalid_method")
		return "", err
	}

	tranID := NewTransactionID(in.UserID)

	for _, item := range in.Items {
		if err := s.stock.CheckAvailability(ctx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, inventory.ErrInsufficientStock) || errors.Is(err, inventory.ErrProductNotFound) {
				s.metrics.CheckoutFailed(ctx, "out_of_stock")
				return "", fmt.Errorf("product %s: %w", item.ProductID, err)
			}
			return "", err
		}
	}

	redirectURL, err := provider.RequestRedirect(ctx, tranID, in.Customer, Currency, in.TotalAmount)
	if err != nil {
		s.metrics.CheckoutFailed(ctx, "provider")
		s.logger.Error("payment intent failed", "error", err, "tran_id", tranID, "method", in.PaymentMethod)
		return "", err
	}

	order := &domain.Order{
		UserID:        in.UserID,
		ShopID:        in.ShopID,
		TranID:        tranID,
		PaymentMethod: in.PaymentMethod,
		TotalAmount:   in.TotalAmount,
		Items:         in.Items,
	}

	if err := s.orders.CreatePending(ctx, order); err != nil {
		if errors.Is(err, inventory.ErrInsufficientStock) {
			s.metrics.CheckoutFailed(ctx, "out_of_stock")
		}
		return "", err
	}

	s.publishPlaced(ctx, order, in.Customer.Email)
	s.metrics.OrderCreated(ctx, string(in.PaymentMethod))
	s.logger.Info("order created", "order_id", order.ID, "tran_id", tranID, "user_id", in.UserID, "method", in.PaymentMethod)

	return redirectURL, nil
}

func (in CheckoutInput) validate() error {
	switch {
	case in.UserID == "":
		return &ValidationError{Reason: "userId is required"}
	case in.ShopID == "":
		return &ValidationError{Reason: "shopId is required"}
	case len(in.Items) == 0:
		return &ValidationError{Reason: "at least one product is required"}
	case in.TotalAmount <= 0:
		return &ValidationError{Reason: "totalAmount must be positive"}
	case in.Customer.Email == "":
		return &ValidationError{Reason: "customer email is required"}
	}

	for _, item := range in.Items {
		if item.ProductID == "" {
			return &ValidationError{Reason: "product id is required"}
		}
		if item.Quantity <= 0 {
			return &ValidationError{Reason: fmt.Sprintf("product %s: quantity must be positive", item.ProductID)}
		}
		if item.Price < 0 {
			return &ValidationError{Reason: fmt.Sprintf("product %s: price must not be negative", item.ProductID)}
		}
	}

	return nil
}

// NewTransactionID builds a collision-free transaction identifier. The
// historical userId+millisecond scheme can collide under concurrent
// requests from one user, so a random suffix is appended.
func NewTransactionID(userID string) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s_%d_%s", userID, time.Now().UnixMilli(), suffix)
}

// CallbackPayload is the union of the fields the two gateways post back.
// SSLCommerz sends tran_id/status, aamarpay sends mer_txnid/pay_status.
type CallbackPayload struct {
	TranID    string `json:"tran_id"`
	MerTxnID  string `json:"mer_txnid"`
	Status    string `json:"status"`
	PayStatus string `json:"pay_status"`
}

func (p CallbackPayload) TransactionID() string {
	if p.TranID != "" {
		return p.TranID
	}
	return p.MerTxnID
}

// Success transitions PENDING → COMPLETED. The payload must assert a
// successful provider status.
func (s *Service) Success(ctx context.Context, p CallbackPayload) (*domain.Order, error) {
	if p.Status != "VALID" && p.PayStatus != "Successful" {
		return nil, ErrInvalidCallback
	}

	order, err := s.settle(ctx, "success", p, domain.OrderStatusCompleted)
	if err != nil {
		return nil, err
	}

	s.publishSettled(ctx, order)
	return order, nil
}

// Fail transitions PENDING → FAILED. The payload must assert a failed
// provider status.
func (s *Service) Fail(ctx context.Context, p CallbackPayload) (*domain.Order, error) {
	if p.Status != "FAILED" && p.PayStatus != "Failed" {
		return nil, ErrInvalidCallback
	}

	return s.settle(ctx, "fail", p, domain.OrderStatusFailed)
}

// Cancel transitions PENDING → CANCELED. Cancellation is user-initiated
// at the gateway, so no status assertion applies.
func (s *Service) Cancel(ctx context.Context, p CallbackPayload) (*domain.Order, error) {
	return s.settle(ctx, "cancel", p, domain.OrderStatusCanceled)
}

func (s *Service) settle(ctx context.Context, kind string, p CallbackPayload, status domain.OrderStatus) (*domain.Order, error) {
	tranID := p.TransactionID()
	if tranID == "" {
		return nil, ErrInvalidCallback
	}

	order, err := s.orders.Settle(ctx, tranID, status)
	if err != nil {
		s.metrics.Callback(ctx, kind, "rejected")
		return nil, err
	}

	s.metrics.Callback(ctx, kind, "applied")
	s.logger.Info("payment callback applied", "tran_id", tranID, "order_id", order.ID, "status", order.Status)
	return order, nil
}

func (s *Service) publishPlaced(ctx context.Context, order *domain.Order, customerEmail string) {
	if s.placed == nil {
		return
	}

	event := domain.OrderPlacedEvent{
		OrderID:       order.ID,
		TranID:        order.TranID,
		UserID:        order.UserID,
		ShopID:        order.ShopID,
		CustomerEmail: customerEmail,
		Items:         order.Items,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		Timestamp:     s.now().UTC(),
	}
	if err := s.placed.Publish(ctx, order.ID, event); err != nil {
		s.logger.Error("failed to publish order placed event", "error", err, "order_id", order.ID)
	}
}

func (s *Service) publishSettled(ctx context.Context, order *domain.Order) {
	if s.settled == nil {
		return
	}

	event := domain.PaymentSettledEvent{
		OrderID:     order.ID,
		TranID:      order.TranID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Timestamp:   s.now().UTC(),
	}
	if err := s.settled.Publish(ctx, order.ID, event); err != nil {
		s.logger.Error("failed to publish payment settled event", "error", err, "order_id", order.ID)
	}
}
