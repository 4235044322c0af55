package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

func (s OrderStatus) String() string {
	return string(s)
}

type OrderLine struct {
	ItemID    string    `json:"item_id"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	Options   Selection `json:"options"`
}

// Order is the immutable snapshot created at checkout time, decoupled from
// further cart edits. Status progression past PENDING belongs to the
// fulfillment side, not this core.
type Order struct {
	ID        uuid.UUID   `json:"id"`
	UserID    string      `json:"user_id"`
	Lines     []OrderLine `json:"lines"`
	Subtotal  float64     `json:"subtotal"`
	Tax       float64     `json:"tax"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewOrder snapshots the cart into a pending order. Selections are cloned so
// later cart edits cannot reach into the order. CreatedAt is left zero; the
// order store assigns it server-side on insert.
func NewOrder(cart Cart, totals Totals) Order {
	lines := make([]OrderLine, len(cart.Lines))
	for i, l := range cart.Lines {
		lines[i] = OrderLine{
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Options:   l.Options.clone(),
		}
	}

	return Order{
		ID:       uuid.New(),
		UserID:   cart.UserID,
		Lines:    lines,
		Subtotal: totals.Subtotal,
		Tax:      totals.Tax,
		Total:    totals.Total,
		Status:   OrderStatusPending,
	}
}
