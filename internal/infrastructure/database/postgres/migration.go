// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/customer"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("Running database auto-migrations...")

	// Dependency order: referenced tables first
	models := []interface{}{
		&customer.Customer{},

		&catalog.Category{},
		&catalog.Brand{},
		&catalog.Product{},

		&cart.CartItem{},

		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for common query paths
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		// Customer indexes
		"CREATE INDEX IF NOT EXISTS idx_customers_email_active ON customers(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_customers_created_at ON customers(created_at DESC)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_producer ON products(producer_id)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Cart indexes
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_customer_product ON cart_items(customer_id, product_id) WHERE deleted_at IS NULL",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_customer_status ON orders(customer_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",
	}

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("Warning: failed to create index: %v", err)
		}
	}

	return nil
}

// SeedInitialData inserts development fixtures: default categories and an
// admin account. Safe to run repeatedly.
func (m *Migration) SeedInitialData() error {
	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	return nil
}

func (m *Migration) seedCategories() error {
	categories := []catalog.Category{
		{
			Name:        "Vegetables",
			Slug:        "vegetables",
			Description: "Fresh seasonal vegetables",
			SortOrder:   1,
			IsActive:    true,
		},
		{
			Name:        "Fruits",
			Slug:        "fruits",
			Description: "Fresh seasonal fruits",
			SortOrder:   2,
			IsActive:    true,
		},
		{
			Name:        "Dairy",
			Slug:        "dairy",
			Description: "Milk, cheese, and other dairy products",
			SortOrder:   3,
			IsActive:    true,
		},
		{
			Name:        "Pantry",
			Slug:        "pantry",
			Description: "Preserves, oils, and dry goods",
			SortOrder:   4,
			IsActive:    true,
		},
	}

	for _, category := range categories {
		var existing catalog.Category
		if err := m.db.Where("slug = ?", category.Slug).First(&existing).Error; err != nil {
			if err := m.db.Create(&category).Error; err != nil {
				return err
			}
			log.Printf("Created category: %s", category.Name)
		}
	}

	return nil
}

func (m *Migration) seedAdminUser() error {
	var existing customer.Customer
	if err := m.db.Where("email = ?", "admin@example.com").First(&existing).Error; err == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := customer.Customer{
		Email:     "admin@example.com",
		Password:  string(hashedPassword),
		FirstName: "Admin",
		LastName:  "User",
		IsActive:  true,
		IsAdmin:   true,
	}

	if err := m.db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Println("Created admin user: admin@example.com")
	return nil
}
