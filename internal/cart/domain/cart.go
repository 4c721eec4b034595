package domain

import (
	"context"
	"time"

	catalog "github.com/tair/ministore/internal/catalog/domain"
)

// Cart bounds. With catalog.MaxPrice they keep TotalPrice inside int64.
const (
	MaxQuantity = 9999
	MaxLines    = 100
)

// Item is one cart line. The product is held by value, as it was when added.
type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal is quantity times unit price.
func (i Item) Subtotal() int64 {
	return int64(i.Quantity) * i.Product.Price
}

// Customer is the delivery contact captured at checkout.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Order is the result of a successful checkout.
type Order struct {
	ID         string    `json:"id"`
	Username   string    `json:"username,omitempty"`
	Customer   Customer  `json:"customer"`
	Items      []Item    `json:"items"`
	TotalItems int       `json:"totalItems"`
	TotalPrice int64     `json:"totalPrice"`
	PlacedAt   time.Time `json:"placedAt"`
}

// TotalItems sums the quantities of items.
func TotalItems(items []Item) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// TotalPrice sums the subtotals of items.
func TotalPrice(items []Item) int64 {
	var total int64
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}

// OrderPublisher announces placed orders to downstream systems.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *Order) error
}
