// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/customer"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// CheckoutHandler handles the checkout flow: summary and order placement
type CheckoutHandler struct {
	checkoutService *checkout.Service
	orderService    *order.Service
	customerService *customer.Service
	emailService    *email.Service
	config          *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CheckoutHandler {
	cartService := cart.NewService(db, redisClient, cfg)
	catalogService := catalog.NewService(db, cfg)

	return &CheckoutHandler{
		checkoutService: checkout.NewService(db, cfg, cartService),
		orderService:    order.NewService(db, cfg, cartService, catalogService),
		customerService: customer.NewService(db, cfg),
		emailService:    email.NewService(cfg),
		config:          cfg,
	}
}

// GetSummary handles GET /checkout
func (h *CheckoutHandler) GetSummary(c *gin.Context) {
	customerID, _ := middleware.GetCustomerIDFromContext(c)

	summary, err := h.checkoutService.GetSummary(customerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout summary retrieved successfully",
		"data":    summary,
	})
}

// PlaceOrder handles POST /checkout
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	customerID, _ := middleware.GetCustomerIDFromContext(c)

	var req order.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	created, err := h.orderService.CreateOrder(customerID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	// Confirmation mail is best-effort; the order is already committed
	if cust, profileErr := h.customerService.GetProfile(customerID); profileErr == nil {
		if mailErr := h.emailService.SendOrderConfirmation(cust.Email, cust.GetFullName(), created); mailErr != nil {
			log.Printf("Warning: failed to send order confirmation for %s: %v", created.OrderNumber, mailErr)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    created,
	})
}
