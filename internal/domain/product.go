package domain

import "time"

// Product carries the catalog attributes plus the live inventory count.
// Inventory is only ever decremented through the inventory ledger during
// order creation; catalog edits set it directly.
type Product struct {
	ID        string    `json:"id"`
	ShopID    string    `json:"shopId"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Inventory int       `json:"inventory"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type StockLevel struct {
	ProductID string `json:"productId"`
	Inventory int    `json:"inventory"`
}
