package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryItem is one stocked material or consumable. Quantities are
// decremented by workflow bills of materials at order creation and are
// never driven below zero.
type InventoryItem struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string  `gorm:"not null;index" json:"name"`
	SKU         string  `gorm:"index" json:"sku"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	MinQuantity float64 `json:"min_quantity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}

func (i *InventoryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// IsLow reports whether the stock level has fallen to or under the
// configured minimum.
func (i *InventoryItem) IsLow() bool {
	return i.MinQuantity > 0 && i.Quantity <= i.MinQuantity
}
