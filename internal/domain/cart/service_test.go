// internal/domain/cart/service_test.go
package cart_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCartTest(t *testing.T) (*gorm.DB, *cart.Service) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(&catalog.Category{}, &catalog.Brand{}, &catalog.Product{}, &cart.CartItem{})
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db, cart.NewService(db, nil, &config.Config{})
}

func createTestProduct(t *testing.T, db *gorm.DB, sku string, price int64, stock int) catalog.Product {
	var category catalog.Category
	if err := db.Where("slug = ?", "test").First(&category).Error; err != nil {
		category = catalog.Category{Name: "Test", Slug: "test", IsActive: true}
		if err := db.Create(&category).Error; err != nil {
			t.Fatalf("failed to create category: %v", err)
		}
	}

	product := catalog.Product{
		SKU:           sku,
		Slug:          sku,
		Name:          "Product " + sku,
		Price:         price,
		CategoryID:    category.ID,
		IsActive:      true,
		StockQuantity: stock,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return product
}

func TestAddToCart(t *testing.T) {
	t.Run("creates a new line item", func(t *testing.T) {
		db, svc := setupCartTest(t)
		product := createTestProduct(t, db, "ADD-1", 500, 10)

		response, err := svc.AddToCart(1, &cart.AddToCartRequest{ProductID: product.ID, Quantity: 2})
		assert.NoError(t, err)
		assert.Len(t, response.Items, 1)
		assert.Equal(t, 2, response.Items[0].Quantity)
		assert.Equal(t, int64(1000), response.Totals.TotalAmount)
	})

	t.Run("adding the same product increments quantity", func(t *testing.T) {
		db, svc := setupCartTest(t)
		product := createTestProduct(t, db, "ADD-2", 500, 10)

		_, err := svc.AddToCart(1, &cart.AddToCartRequest{ProductID: product.ID, Quantity: 2})
		assert.NoError(t, err)
		response, err := svc.AddToCart(1, &cart.AddToCartRequest{ProductID: product.ID, Quantity: 3})
		assert.NoError(t, err)

		assert.Len(t, response.Items, 1)
		assert.Equal(t, 5, response.Items[0].Quantity)
	})

	t.Run("rejects unknown or inactive product", func(t *testing.T) {
		db, svc := setupCartTest(t)
		product := createTestProduct(t, db, "ADD-3", 500, 10)
		db.Model(&catalog.Product{}).Where("id = ?", product.ID).Update("is_active", false)

		_, err := svc.AddToCart(1, &cart.AddToCartRequest{ProductID: product.ID, Quantity: 1})
		assert.Error(t, err)

		_, err = svc.AddToCart(1, &cart.AddToCartRequest{ProductID: 9999, Quantity: 1})
		assert.Error(t, err)
	})

	t.Run("rejects quantities beyond stock", func(t *testing.T) {
		db, svc := setupCartTest(t)
		product := createTestProduct(t, db, "ADD-4", 500, 3)

		_, err := svc.AddToCart(1, &cart.AddToCartRequest{ProductID: product.ID, Quantity: 4})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient stock")

		// Incrementing past the ceiling also fails
		_, err = svc.AddToCart(1, &cart.AddToCartRequest{ProductID: product.ID, Quantity: 2})
		assert.NoError(t, err)
		_, err = svc.AddToCart(1, &cart.AddToCartRequest{ProductID: product.ID, Quantity: 2})
		assert.Error(t, err)
	})

	t.Run("carts are per customer", func(t *testing.T) {
		db, svc := setupCartTest(t)
		product := createTestProduct(t, db, "ADD-5", 500, 10)

		_, err := svc.AddToCart(1, &cart.AddToCartRequest{ProductID: product.ID, Quantity: 2})
		assert.NoError(t, err)

		other, err := svc.GetCart(2)
		assert.NoError(t, err)
		assert.Empty(t, other.Items)
	})
}

func TestUpdateItem(t *testing.T) {
	t.Run("overwrites the quantity", func(t *testing.T) {
		db, svc := setupCartTest(t)
		product := createTestProduct(t, db, "UPD-1", 500, 10)

		_, err := svc.AddToCart(1, &cart.AddToCartRequest{ProductID: product.ID, Quantity: 2})
		assert.NoError(t, err)

		response, err := svc.UpdateItem(1, product.ID, &cart.UpdateCartItemRequest{Quantity: 7})
		assert.NoError(t, err)
		assert.Equal(t, 7, response.Items[0].Quantity)
	})

	t.Run("rejects zero and negative quantities", func(t *testing.T) {
		db, svc := setupCartTest(t)
		product := createTestProduct(t, db, "UPD-2", 500, 10)

		_, err := svc.AddToCart(1, &cart.AddToCartRequest{ProductID: product.ID, Quantity: 2})
		assert.NoError(t, err)

		_, err = svc.UpdateItem(1, product.ID, &cart.UpdateCartItemRequest{Quantity: 0})
		assert.Error(t, err)
		assert.Equal(t, "quantity must be greater than 0", err.Error())

		_, err = svc.UpdateItem(1, product.ID, &cart.UpdateCartItemRequest{Quantity: -1})
		assert.Error(t, err)

		// Quantity unchanged
		response, err := svc.GetCart(1)
		assert.NoError(t, err)
		assert.Equal(t, 2, response.Items[0].Quantity)
	})

	t.Run("fails for items not in the cart", func(t *testing.T) {
		db, svc := setupCartTest(t)
		product := createTestProduct(t, db, "UPD-3", 500, 10)

		_, err := svc.UpdateItem(1, product.ID, &cart.UpdateCartItemRequest{Quantity: 1})
		assert.Error(t, err)
		assert.Equal(t, "item not found in cart", err.Error())
	})
}

func TestRemoveItem(t *testing.T) {
	t.Run("removes the line item", func(t *testing.T) {
		db, svc := setupCartTest(t)
		product := createTestProduct(t, db, "REM-1", 500, 10)

		_, err := svc.AddToCart(1, &cart.AddToCartRequest{ProductID: product.ID, Quantity: 2})
		assert.NoError(t, err)

		response, err := svc.RemoveItem(1, product.ID)
		assert.NoError(t, err)
		assert.Empty(t, response.Items)
	})

	t.Run("removing an absent item succeeds", func(t *testing.T) {
		_, svc := setupCartTest(t)

		response, err := svc.RemoveItem(1, 9999)
		assert.NoError(t, err)
		assert.Empty(t, response.Items)
	})
}

func TestClearCart(t *testing.T) {
	db, svc := setupCartTest(t)
	first := createTestProduct(t, db, "CLR-1", 500, 10)
	second := createTestProduct(t, db, "CLR-2", 300, 10)

	_, err := svc.AddToCart(1, &cart.AddToCartRequest{ProductID: first.ID, Quantity: 1})
	assert.NoError(t, err)
	_, err = svc.AddToCart(1, &cart.AddToCartRequest{ProductID: second.ID, Quantity: 2})
	assert.NoError(t, err)

	assert.NoError(t, svc.ClearCart(1))

	response, err := svc.GetCart(1)
	assert.NoError(t, err)
	assert.Empty(t, response.Items)
	assert.Zero(t, response.Totals.TotalAmount)
}

func TestCartTotals(t *testing.T) {
	db, svc := setupCartTest(t)
	first := createTestProduct(t, db, "TOT-1", 250, 10)
	second := createTestProduct(t, db, "TOT-2", 400, 10)

	_, err := svc.AddToCart(1, &cart.AddToCartRequest{ProductID: first.ID, Quantity: 3})
	assert.NoError(t, err)
	response, err := svc.AddToCart(1, &cart.AddToCartRequest{ProductID: second.ID, Quantity: 2})
	assert.NoError(t, err)

	assert.Equal(t, 2, response.Totals.ItemCount)
	assert.Equal(t, 5, response.Totals.TotalQuantity)
	assert.Equal(t, int64(3*250+2*400), response.Totals.TotalAmount)
}

func TestCartTotalsFollowCurrentPrice(t *testing.T) {
	db, svc := setupCartTest(t)
	product := createTestProduct(t, db, "CUR-1", 250, 10)

	_, err := svc.AddToCart(1, &cart.AddToCartRequest{ProductID: product.ID, Quantity: 2})
	assert.NoError(t, err)

	db.Model(&catalog.Product{}).Where("id = ?", product.ID).Update("price", 300)

	response, err := svc.GetCart(1)
	assert.NoError(t, err)
	assert.Equal(t, int64(250), response.Items[0].Price)
	assert.Equal(t, int64(300), response.Items[0].CurrentPrice)
	assert.Equal(t, int64(600), response.Totals.TotalAmount)
}

func TestGetBadge(t *testing.T) {
	db, svc := setupCartTest(t)
	first := createTestProduct(t, db, "BDG-1", 250, 10)
	second := createTestProduct(t, db, "BDG-2", 400, 10)

	badge, err := svc.GetBadge(1)
	assert.NoError(t, err)
	assert.Zero(t, badge.Count)
	assert.Zero(t, badge.Total)

	_, err = svc.AddToCart(1, &cart.AddToCartRequest{ProductID: first.ID, Quantity: 3})
	assert.NoError(t, err)
	_, err = svc.AddToCart(1, &cart.AddToCartRequest{ProductID: second.ID, Quantity: 1})
	assert.NoError(t, err)

	badge, err = svc.GetBadge(1)
	assert.NoError(t, err)
	assert.Equal(t, 4, badge.Count)
	assert.Equal(t, int64(3*250+400), badge.Total)
}
