package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus defines possible order statuses
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDone       OrderStatus = "done"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order is the aggregate root for a customer order. It exclusively owns
// its service items; items have no lifecycle of their own.
type Order struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	CustomerID string `gorm:"index" json:"customer_id"`
	// Denormalized on purpose so the order survives late customer lookups.
	CustomerName string `json:"customer_name"`

	Items []ServiceItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	// Derived from the items via the total invariant, but persisted.
	// Never trusted as client-supplied truth beyond that formula.
	TotalAmount    float64 `json:"total_amount"`
	Deposit        float64 `json:"deposit"`
	Discount       float64 `json:"discount"`
	AdditionalFees float64 `json:"additional_fees"`

	Status           OrderStatus `gorm:"default:pending;index" json:"status"`
	OrderDate        time.Time   `json:"order_date"`
	ExpectedDelivery *time.Time  `json:"expected_delivery,omitempty"`
	Notes            string      `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}
	return nil
}

// Subtotal returns the raw sum of item line amounts before discount
// and fees.
func (o *Order) Subtotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}
