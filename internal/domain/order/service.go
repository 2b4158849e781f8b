// internal/domain/order/service.go
package order

import (
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// Service handles the order workflow: checkout, cancellation and the
// admin status lifecycle
type Service struct {
	db             *gorm.DB
	config         *config.Config
	cartService    *cart.Service
	catalogService *catalog.Service
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, cartService *cart.Service, catalogService *catalog.Service) *Service {
	return &Service{
		db:             db,
		config:         cfg,
		cartService:    cartService,
		catalogService: catalogService,
	}
}

// OrderItemInput represents one requested line item
type OrderItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest represents order creation data. When Items is empty
// the customer's cart is used as the item source and cleared on success.
type CreateOrderRequest struct {
	ShippingAddress string           `json:"shipping_address" binding:"required"`
	PaymentMethod   string           `json:"payment_method"`
	Items           []OrderItemInput `json:"items,omitempty"`
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page       int         `form:"page,default=1"`
	Limit      int         `form:"limit,default=20"`
	Status     OrderStatus `form:"status"`
	CustomerID uint        `form:"customer_id"`
	SortBy     string      `form:"sort_by,default=created_at"`
	SortOrder  string      `form:"sort_order,default=desc"`
}

// OrderListResponse represents order list response with pagination
type OrderListResponse struct {
	Orders     []Order            `json:"orders"`
	Pagination catalog.Pagination `json:"pagination"`
}

// CreateOrder turns a validated item set into a persisted order. The
// header, line items, stock decrements and status history are written in a
// single transaction; any failure leaves no partial state behind. Prices
// are re-fetched from the catalog inside the transaction and frozen into
// the order items; client-supplied prices are never trusted.
func (s *Service) CreateOrder(customerID uint, req *CreateOrderRequest) (*Order, error) {
	if req.ShippingAddress == "" {
		return nil, fmt.Errorf("shipping address is required")
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "pending"
	}

	lines, fromCart, err := s.resolveLines(customerID, req.Items)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	var created Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var totalAmount int64
		items := make([]OrderItem, 0, len(lines))

		for _, line := range lines {
			var prod catalog.Product
			if err := tx.Where("id = ? AND is_active = ?", line.ProductID, true).First(&prod).Error; err != nil {
				return fmt.Errorf("product %d not found", line.ProductID)
			}

			// Reserve stock up front; fails the whole order when the
			// remaining stock cannot cover the requested quantity.
			if err := s.catalogService.AdjustStock(tx, prod.ID, -line.Quantity); err != nil {
				return err
			}

			totalAmount += prod.Price * int64(line.Quantity)
			items = append(items, OrderItem{
				ProductID:  prod.ID,
				SKU:        prod.SKU,
				Name:       prod.Name,
				Quantity:   line.Quantity,
				Price:      prod.Price,
				TotalPrice: prod.Price * int64(line.Quantity),
			})
		}

		created = Order{
			CustomerID:      customerID,
			Status:          OrderStatusPending,
			TotalAmount:     totalAmount,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   paymentMethod,
		}

		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		created.OrderNumber = created.GenerateOrderNumber()
		if err := tx.Model(&created).Update("order_number", created.OrderNumber).Error; err != nil {
			return fmt.Errorf("failed to update order number: %w", err)
		}

		for i := range items {
			items[i].OrderID = created.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}

		history := OrderStatusHistory{
			OrderID:   created.ID,
			Status:    OrderStatusPending,
			Comment:   "Order created",
			CreatedBy: customerID,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// The cart is only cleared once the order is committed, so a rejected
	// checkout leaves the cart untouched.
	if fromCart {
		if err := s.cartService.ClearCart(customerID); err != nil {
			fmt.Printf("Warning: failed to clear cart after order creation: %v\n", err)
		}
	}

	if err := s.db.Preload("Items").Preload("StatusHistory").First(&created, created.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to load complete order: %w", err)
	}

	return &created, nil
}

// CancelOrder cancels an order and restores stock for every line item.
// The requesting actor must own the order or be an administrator, and the
// order must still be in a cancellable state. Status flip, restocks and
// history are one transaction: a failed restock fails the cancellation.
func (s *Service) CancelOrder(orderID uint, actor Actor, reason string) error {
	var ord Order
	if err := s.db.Preload("Items").First(&ord, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("order not found")
		}
		return fmt.Errorf("failed to retrieve order: %w", err)
	}

	if !actor.IsAdmin && !ord.BelongsTo(actor.CustomerID) {
		return fmt.Errorf("not allowed to cancel this order")
	}

	if !ord.CanBeCancelled() {
		return fmt.Errorf("order cannot be cancelled in current status: %s", ord.Status)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range ord.Items {
			if err := s.catalogService.AdjustStock(tx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":       OrderStatusCancelled,
			"cancelled_at": now,
		}
		if err := tx.Model(&ord).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		comment := "Order cancelled"
		if reason != "" {
			comment = fmt.Sprintf("Order cancelled: %s", reason)
		}
		history := OrderStatusHistory{
			OrderID:   orderID,
			Status:    OrderStatusCancelled,
			Comment:   comment,
			CreatedBy: actor.CustomerID,
			CreatedAt: now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}

		return nil
	})
}

// UpdateStatus moves an order to a new status (admin only). Transitions
// are validated against the state machine; cancellation must go through
// CancelOrder so stock is restored.
func (s *Service) UpdateStatus(orderID uint, newStatus OrderStatus, comment string, actor Actor) error {
	if !actor.IsAdmin {
		return fmt.Errorf("admin access required")
	}

	if !newStatus.IsValid() {
		return fmt.Errorf("invalid order status: %s", newStatus)
	}

	if newStatus == OrderStatusCancelled {
		return s.CancelOrder(orderID, actor, comment)
	}

	var ord Order
	if err := s.db.First(&ord, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("order not found")
		}
		return fmt.Errorf("failed to retrieve order: %w", err)
	}

	if !ord.Status.CanTransitionTo(newStatus) {
		return fmt.Errorf("invalid status transition from %s to %s", ord.Status, newStatus)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status": newStatus,
	}
	switch newStatus {
	case OrderStatusProcessing:
		updates["processed_at"] = now
	case OrderStatusShipped:
		updates["shipped_at"] = now
	case OrderStatusDelivered:
		updates["delivered_at"] = now
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&ord).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		history := OrderStatusHistory{
			OrderID:   orderID,
			Status:    newStatus,
			Comment:   comment,
			CreatedBy: actor.CustomerID,
			CreatedAt: now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}

		return nil
	})
}

// GetOrder retrieves a single order, enforcing ownership for non-admins
func (s *Service) GetOrder(orderID uint, actor Actor) (*Order, error) {
	var ord Order
	result := s.db.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&ord, orderID)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}

	if !actor.IsAdmin && !ord.BelongsTo(actor.CustomerID) {
		return nil, fmt.Errorf("order not found")
	}

	return &ord, nil
}

// GetOrders retrieves orders with filtering and pagination (admin)
func (s *Service) GetOrders(req *OrderListRequest) (*OrderListResponse, error) {
	var orders []Order
	var total int64

	query := s.db.Model(&Order{}).Preload("Items")

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.CustomerID > 0 {
		query = query.Where("customer_id = ?", req.CustomerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	query = query.Order(s.buildOrderClause(req.SortBy, req.SortOrder))

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &OrderListResponse{
		Orders: orders,
		Pagination: catalog.Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// GetCustomerOrders retrieves orders for a specific customer
func (s *Service) GetCustomerOrders(customerID uint, page, limit int) (*OrderListResponse, error) {
	req := &OrderListRequest{
		Page:       page,
		Limit:      limit,
		CustomerID: customerID,
	}
	return s.GetOrders(req)
}

// Private helper methods

// resolveLines normalizes the item source: explicit request items when
// present (duplicates merged), the customer's cart otherwise
func (s *Service) resolveLines(customerID uint, items []OrderItemInput) ([]OrderItemInput, bool, error) {
	if len(items) > 0 {
		merged := make([]OrderItemInput, 0, len(items))
		index := make(map[uint]int, len(items))
		for _, item := range items {
			if item.ProductID == 0 {
				return nil, false, fmt.Errorf("product id is required")
			}
			if item.Quantity <= 0 {
				return nil, false, fmt.Errorf("quantity must be greater than 0")
			}
			if pos, ok := index[item.ProductID]; ok {
				merged[pos].Quantity += item.Quantity
				continue
			}
			index[item.ProductID] = len(merged)
			merged = append(merged, item)
		}
		return merged, false, nil
	}

	cartResponse, err := s.cartService.GetCart(customerID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	lines := make([]OrderItemInput, 0, len(cartResponse.Items))
	for _, item := range cartResponse.Items {
		lines = append(lines, OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return lines, true, nil
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"total_amount": true,
		"status":       true,
		"order_number": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
