package kafka

import (
	"time"

	"github.com/tair/ministore/internal/cart/domain"
)

// OrderLine is one product line of a placed order.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// OrderPlacedEvent represents a completed checkout
type OrderPlacedEvent struct {
	EventID    string      `json:"event_id"`
	EventType  string      `json:"event_type"`
	OrderID    string      `json:"order_id"`
	Username   string      `json:"username,omitempty"`
	Email      string      `json:"email"`
	Lines      []OrderLine `json:"lines"`
	TotalItems int         `json:"total_items"`
	TotalPrice int64       `json:"total_price"`
	Currency   string      `json:"currency"`
	PlacedAt   time.Time   `json:"placed_at"`
	Timestamp  time.Time   `json:"timestamp"`
}

// NewOrderPlacedEvent builds the event payload for order.
func NewOrderPlacedEvent(order *domain.Order) OrderPlacedEvent {
	lines := make([]OrderLine, 0, len(order.Items))
	for _, it := range order.Items {
		lines = append(lines, OrderLine{
			ProductID: it.Product.ID,
			Slug:      it.Product.Slug,
			Name:      it.Product.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.Product.Price,
		})
	}
	return OrderPlacedEvent{
		OrderID:    order.ID,
		Username:   order.Username,
		Email:      order.Customer.Email,
		Lines:      lines,
		TotalItems: order.TotalItems,
		TotalPrice: order.TotalPrice,
		Currency:   Currency,
		PlacedAt:   order.PlacedAt,
	}
}

// Prices are whole rupiah.
const Currency = "IDR"

// Event types
const (
	EventTypeOrderPlaced = "order.placed"
)

// Kafka topics
const (
	TopicOrderPlaced = "order-placed"
)

// Quantities sums the ordered quantity per product id.
func (e OrderPlacedEvent) Quantities() map[string]int {
	out := make(map[string]int, len(e.Lines))
	for _, l := range e.Lines {
		out[l.ProductID] += l.Quantity
	}
	return out
}
