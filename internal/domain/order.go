package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusFailed    OrderStatus = "FAILED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// Terminal reports whether no further status transition is permitted.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed || s == OrderStatusCanceled
}

type PaymentMethod string

const (
	PaymentMethodSSLCommerz PaymentMethod = "SSLCommerz"
	PaymentMethodAmarPay    PaymentMethod = "AmarPay"
)

type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// OrderItem snapshots quantity and unit price at order time; it does not
// follow later product price changes.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order is one checkout attempt. TranID correlates the row with a payment
// gateway session and is unique and immutable once assigned.
type Order struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	ShopID        string        `json:"shopId"`
	TranID        string        `json:"tranId"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	TotalAmount   float64       `json:"totalAmount"`
	Status        OrderStatus   `json:"status"`
	Items         []OrderItem   `json:"items"`
	IsDeleted     bool          `json:"isDeleted"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}
