// internal/domain/cart/entity.go
package cart

import (
	"time"

	"gorm.io/gorm"
)

// CartItem represents one product a customer intends to buy. At most one
// row exists per (customer, product) pair; adding the same product again
// increments the quantity instead.
type CartItem struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CustomerID uint           `gorm:"not null;index" json:"customer_id"`
	ProductID  uint           `gorm:"not null;index" json:"product_id"`
	Quantity   int            `gorm:"not null;default:1" json:"quantity"`
	Price      int64          `gorm:"not null" json:"price"` // Display snapshot; checkout re-fetches
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// CartTotals represents calculated cart totals
type CartTotals struct {
	ItemCount     int   `json:"item_count"`     // Number of unique items
	TotalQuantity int   `json:"total_quantity"` // Sum of all quantities
	TotalAmount   int64 `json:"total_amount"`   // In cents
}

// CartBadge is the lightweight count/total pair cached in Redis for the
// storefront header
type CartBadge struct {
	Count int   `json:"count"`
	Total int64 `json:"total"`
}
