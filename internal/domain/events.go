package domain

import "time"

// OrderPlacedEvent is published after the order-creation transaction commits.
type OrderPlacedEvent struct {
	OrderID       string        `json:"order_id"`
	TranID        string        `json:"tran_id"`
	UserID        string        `json:"user_id"`
	ShopID        string        `json:"shop_id"`
	CustomerEmail string        `json:"customer_email"`
	Items         []OrderItem   `json:"items"`
	TotalAmount   float64       `json:"total_amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Timestamp     time.Time     `json:"timestamp"`
}

// PaymentSettledEvent is published when a gateway callback moves an order
// into a terminal state.
type PaymentSettledEvent struct {
	OrderID     string      `json:"order_id"`
	TranID      string      `json:"tran_id"`
	UserID      string      `json:"user_id"`
	Status      OrderStatus `json:"status"`
	TotalAmount float64     `json:"total_amount"`
	Timestamp   time.Time   `json:"timestamp"`
}
