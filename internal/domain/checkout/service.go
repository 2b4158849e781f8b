// internal/domain/checkout/service.go
package checkout

import (
	"fmt"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"gorm.io/gorm"
)

// Service assembles the pre-order summary shown on the checkout page
type Service struct {
	db          *gorm.DB
	config      *config.Config
	cartService *cart.Service
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, cfg *config.Config, cartService *cart.Service) *Service {
	return &Service{
		db:          db,
		config:      cfg,
		cartService: cartService,
	}
}

// PaymentMethod describes one selectable payment option
type PaymentMethod struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Summary is the checkout page payload: the live cart plus the payment
// options the storefront offers
type Summary struct {
	Cart           *cart.CartResponse `json:"cart"`
	PaymentMethods []PaymentMethod    `json:"payment_methods"`
}

// availablePaymentMethods is static for now. TODO: move to config once a
// second payment provider is integrated.
var availablePaymentMethods = []PaymentMethod{
	{Code: "cod", Name: "Cash on Delivery", Description: "Pay in cash when the order arrives"},
	{Code: "bank_transfer", Name: "Bank Transfer", Description: "Pay via direct bank transfer"},
}

// GetSummary returns the checkout summary for the customer. An empty cart
// is an error; there is nothing to check out.
func (s *Service) GetSummary(customerID uint) (*Summary, error) {
	cartResponse, err := s.cartService.GetCart(customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	if len(cartResponse.Items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	return &Summary{
		Cart:           cartResponse,
		PaymentMethods: availablePaymentMethods,
	}, nil
}
