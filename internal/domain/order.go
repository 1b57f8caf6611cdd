package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
)

func (s OrderStatus) String() string {
	return string(s)
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	VariantID string  `json:"variant_id,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order is the durable record created from a PendingOrderDraft plus the
// gateway transaction id. At most one order exists per PaymentReference.
type Order struct {
	ID               uuid.UUID
	UserID           string
	Items            []OrderItem
	Total            float64
	Currency         string
	Status           OrderStatus
	ShippingAddress  Address
	PaymentReference string
	PaymentID        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
