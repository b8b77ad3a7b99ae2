package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "pending"
	OrderStatusAwaitingPay OrderStatus = "awaiting_payment"
	OrderStatusPaid        OrderStatus = "paid"
	OrderStatusInPrint     OrderStatus = "in_print"
	OrderStatusReady       OrderStatus = "ready"
	OrderStatusDelivered   OrderStatus = "delivered"
	OrderStatusCancelled   OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:     {OrderStatusAwaitingPay, OrderStatusCancelled},
	OrderStatusAwaitingPay: {OrderStatusPaid, OrderStatusPending, OrderStatusCancelled},
	OrderStatusPaid:        {OrderStatusInPrint, OrderStatusCancelled},
	OrderStatusInPrint:     {OrderStatusReady},
	OrderStatusReady:       {OrderStatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusAwaitingPay, OrderStatusPaid, OrderStatusInPrint,
		OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID         uuid.UUID   `gorm:"type:uuid;index" json:"shop_id"`
	Status         OrderStatus `gorm:"type:varchar(30);index" json:"status"`
	Items          []OrderItem `json:"items"`
	Email          string      `gorm:"size:140" json:"email"`
	Name           string      `gorm:"size:140" json:"name"`
	Phone          string      `gorm:"size:50" json:"phone"`
	Notes          string      `gorm:"type:text" json:"notes"`
	Total          float64     `gorm:"type:decimal(12,2)" json:"total"`
	MPPreferenceID string      `gorm:"size:140" json:"-"`
	MPStatus       string      `gorm:"size:60" json:"payment_status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Recalculate sets every item subtotal and the order total from unit prices.
func (o *Order) Recalculate() {
	total := 0.0
	for i := range o.Items {
		o.Items[i].Subtotal = o.Items[i].UnitPrice * float64(o.Items[i].Quantity)
		total += o.Items[i].Subtotal
	}
	o.Total = total
}

func (o *Order) Editable() bool { return o.Status == OrderStatusPending }

type OrderItem struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID        uuid.UUID      `gorm:"type:uuid;index" json:"order_id"`
	TemplateID     uuid.UUID      `gorm:"type:uuid;index" json:"template_id"`
	Title          string         `gorm:"size:180" json:"title"`
	DocumentURL    string         `gorm:"size:512" json:"document_url"`
	Pages          int            `gorm:"not null;default:0" json:"pages"`
	Options        map[string]any `gorm:"type:jsonb;serializer:json" json:"options"`
	Quantity       int            `gorm:"not null" json:"quantity"`
	OptionsPrice   float64        `gorm:"type:decimal(12,2);default:0" json:"options_price"`
	UnitPrice      float64        `gorm:"type:decimal(12,2)" json:"unit_price"`
	Subtotal       float64        `gorm:"type:decimal(12,2)" json:"subtotal"`
	PricingVersion int            `gorm:"default:0" json:"pricing_version"`
	CreatedAt      time.Time      `json:"created_at"`
}
