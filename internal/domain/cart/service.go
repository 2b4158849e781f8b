// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

const badgeCacheTTL = 15 * time.Minute

// Service handles cart business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// CartItemResponse represents a cart item with product details
type CartItemResponse struct {
	ProductID    uint             `json:"product_id"`
	Quantity     int              `json:"quantity"`
	Price        int64            `json:"price"`         // Snapshot taken when the item was added
	CurrentPrice int64            `json:"current_price"` // Live catalog price; authoritative at checkout
	Product      *catalog.Product `json:"product,omitempty"`
	AddedAt      time.Time        `json:"added_at"`
}

// CartResponse represents a shopping cart with items and summary
type CartResponse struct {
	CustomerID uint               `json:"customer_id"`
	Items      []CartItemResponse `json:"items"`
	Totals     CartTotals         `json:"totals"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GetCart retrieves the customer's cart joined with current product data
func (s *Service) GetCart(customerID uint) (*CartResponse, error) {
	var dbItems []CartItem
	if err := s.db.Where("customer_id = ?", customerID).Order("created_at ASC").Find(&dbItems).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	items := make([]CartItemResponse, len(dbItems))
	updatedAt := time.Now().UTC()
	for i, item := range dbItems {
		items[i] = CartItemResponse{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			Price:        item.Price,
			CurrentPrice: item.Price,
			AddedAt:      item.CreatedAt,
		}
		if item.UpdatedAt.After(updatedAt) {
			updatedAt = item.UpdatedAt
		}
	}

	s.loadProductDetails(items)

	return &CartResponse{
		CustomerID: customerID,
		Items:      items,
		Totals:     s.calculateTotals(items),
		UpdatedAt:  updatedAt,
	}, nil
}

// AddToCart adds an item to the cart, incrementing the quantity when the
// (customer, product) pair already exists
func (s *Service) AddToCart(customerID uint, req *AddToCartRequest) (*CartResponse, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be greater than 0")
	}

	var prod catalog.Product
	if err := s.db.Where("id = ? AND is_active = ?", req.ProductID, true).First(&prod).Error; err != nil {
		return nil, fmt.Errorf("product not found or inactive")
	}

	var existing CartItem
	result := s.db.Where("customer_id = ? AND product_id = ?", customerID, req.ProductID).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		if prod.StockQuantity < req.Quantity {
			return nil, fmt.Errorf("insufficient stock. Available: %d", prod.StockQuantity)
		}
		newItem := CartItem{
			CustomerID: customerID,
			ProductID:  req.ProductID,
			Quantity:   req.Quantity,
			Price:      prod.Price,
		}
		if err := s.db.Create(&newItem).Error; err != nil {
			return nil, fmt.Errorf("failed to add item to cart: %w", err)
		}
	} else if result.Error != nil {
		return nil, fmt.Errorf("failed to check cart: %w", result.Error)
	} else {
		newQuantity := existing.Quantity + req.Quantity
		if prod.StockQuantity < newQuantity {
			return nil, fmt.Errorf("insufficient stock for total quantity. Available: %d", prod.StockQuantity)
		}
		existing.Quantity = newQuantity
		existing.Price = prod.Price // Refresh the display snapshot
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	}

	s.invalidateBadge(customerID)
	return s.GetCart(customerID)
}

// UpdateItem overwrites the stored quantity for an existing line item
func (s *Service) UpdateItem(customerID, productID uint, req *UpdateCartItemRequest) (*CartResponse, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be greater than 0")
	}

	var item CartItem
	result := s.db.Where("customer_id = ? AND product_id = ?", customerID, productID).First(&item)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("item not found in cart")
	} else if result.Error != nil {
		return nil, fmt.Errorf("failed to check cart: %w", result.Error)
	}

	var prod catalog.Product
	if err := s.db.First(&prod, productID).Error; err == nil {
		if prod.StockQuantity < req.Quantity {
			return nil, fmt.Errorf("insufficient stock. Available: %d", prod.StockQuantity)
		}
	}

	if err := s.db.Model(&item).Update("quantity", req.Quantity).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	s.invalidateBadge(customerID)
	return s.GetCart(customerID)
}

// RemoveItem deletes the line item. Removing an item that is not in the
// cart is not an error.
func (s *Service) RemoveItem(customerID, productID uint) (*CartResponse, error) {
	if err := s.db.Where("customer_id = ? AND product_id = ?", customerID, productID).Delete(&CartItem{}).Error; err != nil {
		return nil, fmt.Errorf("failed to remove item from cart: %w", err)
	}

	s.invalidateBadge(customerID)
	return s.GetCart(customerID)
}

// ClearCart removes all line items for the customer
func (s *Service) ClearCart(customerID uint) error {
	if err := s.db.Where("customer_id = ?", customerID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	s.invalidateBadge(customerID)
	return nil
}

// GetItemCount returns the total quantity across all line items
func (s *Service) GetItemCount(customerID uint) (int, error) {
	badge, err := s.GetBadge(customerID)
	if err != nil {
		return 0, err
	}
	return badge.Count, nil
}

// GetCartTotal returns the cart total in cents
func (s *Service) GetCartTotal(customerID uint) (int64, error) {
	badge, err := s.GetBadge(customerID)
	if err != nil {
		return 0, err
	}
	return badge.Total, nil
}

// GetBadge returns the cached count/total pair, falling back to the
// database and repopulating the cache on a miss
func (s *Service) GetBadge(customerID uint) (*CartBadge, error) {
	if cached := s.getCachedBadge(customerID); cached != nil {
		return cached, nil
	}

	var dbItems []CartItem
	if err := s.db.Where("customer_id = ?", customerID).Find(&dbItems).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	badge := &CartBadge{}
	for _, item := range dbItems {
		badge.Count += item.Quantity
		badge.Total += item.Price * int64(item.Quantity)
	}

	s.cacheBadge(customerID, badge)
	return badge, nil
}

// Private helper methods

func (s *Service) loadProductDetails(items []CartItemResponse) {
	for i := range items {
		var prod catalog.Product
		err := s.db.Preload("Category").Preload("Brand").
			Where("id = ?", items[i].ProductID).First(&prod).Error
		if err != nil {
			continue // Skip if product not found
		}
		items[i].Product = &prod
		items[i].CurrentPrice = prod.Price
	}
}

func (s *Service) calculateTotals(items []CartItemResponse) CartTotals {
	var totals CartTotals

	totals.ItemCount = len(items)
	for _, item := range items {
		totals.TotalQuantity += item.Quantity
		totals.TotalAmount += item.CurrentPrice * int64(item.Quantity)
	}

	return totals
}

func (s *Service) badgeKey(customerID uint) string {
	return fmt.Sprintf("cart:badge:%d", customerID)
}

func (s *Service) getCachedBadge(customerID uint) *CartBadge {
	if s.redisClient == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	data, err := s.redisClient.Get(ctx, s.badgeKey(customerID)).Result()
	if err != nil {
		return nil
	}

	var badge CartBadge
	if err := json.Unmarshal([]byte(data), &badge); err != nil {
		return nil
	}
	return &badge
}

func (s *Service) cacheBadge(customerID uint, badge *CartBadge) {
	if s.redisClient == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	data, err := json.Marshal(badge)
	if err != nil {
		return
	}
	s.redisClient.Set(ctx, s.badgeKey(customerID), data, badgeCacheTTL)
}

func (s *Service) invalidateBadge(customerID uint) {
	if s.redisClient == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	s.redisClient.Del(ctx, s.badgeKey(customerID))
}
