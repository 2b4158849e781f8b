// internal/domain/catalog/service_test.go
package catalog_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCatalogTest(t *testing.T) (*gorm.DB, *catalog.Service) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&catalog.Category{}, &catalog.Brand{}, &catalog.Product{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db, catalog.NewService(db, &config.Config{})
}

func createCategory(t *testing.T, svc *catalog.Service, slug string) *catalog.Category {
	category, err := svc.CreateCategory(&catalog.CreateCategoryRequest{
		Name: "Category " + slug,
		Slug: slug,
	})
	if err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return category
}

func TestCreateProduct(t *testing.T) {
	t.Run("creates an active product", func(t *testing.T) {
		_, svc := setupCatalogTest(t)
		category := createCategory(t, svc, "veg")

		product, err := svc.CreateProduct(&catalog.CreateProductRequest{
			SKU:           "TOM-1",
			Name:          "Tomatoes",
			Slug:          "tomatoes",
			Price:         350,
			CategoryID:    category.ID,
			StockQuantity: 40,
		})
		assert.NoError(t, err)
		assert.True(t, product.IsActive)
		assert.Equal(t, 40, product.StockQuantity)
	})

	t.Run("rejects duplicate SKU or slug", func(t *testing.T) {
		_, svc := setupCatalogTest(t)
		category := createCategory(t, svc, "veg")

		req := &catalog.CreateProductRequest{
			SKU:        "TOM-1",
			Name:       "Tomatoes",
			Slug:       "tomatoes",
			Price:      350,
			CategoryID: category.ID,
		}
		_, err := svc.CreateProduct(req)
		assert.NoError(t, err)

		_, err = svc.CreateProduct(req)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		_, svc := setupCatalogTest(t)

		_, err := svc.CreateProduct(&catalog.CreateProductRequest{
			SKU:        "TOM-1",
			Name:       "Tomatoes",
			Slug:       "tomatoes",
			Price:      350,
			CategoryID: 42,
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "category not found")
	})
}

func TestAdjustStock(t *testing.T) {
	newProduct := func(t *testing.T, svc *catalog.Service, stock int) *catalog.Product {
		category := createCategory(t, svc, "veg")
		product, err := svc.CreateProduct(&catalog.CreateProductRequest{
			SKU:           "STK-1",
			Name:          "Stocked",
			Slug:          "stocked",
			Price:         100,
			CategoryID:    category.ID,
			StockQuantity: stock,
		})
		assert.NoError(t, err)
		return product
	}

	t.Run("decrements and increments", func(t *testing.T) {
		_, svc := setupCatalogTest(t)
		product := newProduct(t, svc, 10)

		assert.NoError(t, svc.AdjustStock(nil, product.ID, -4))
		got, err := svc.GetProduct(product.ID)
		assert.NoError(t, err)
		assert.Equal(t, 6, got.StockQuantity)

		assert.NoError(t, svc.AdjustStock(nil, product.ID, 4))
		got, err = svc.GetProduct(product.ID)
		assert.NoError(t, err)
		assert.Equal(t, 10, got.StockQuantity)
	})

	t.Run("refuses to go below zero", func(t *testing.T) {
		_, svc := setupCatalogTest(t)
		product := newProduct(t, svc, 3)

		err := svc.AdjustStock(nil, product.ID, -4)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient stock")

		// Stock unchanged after the failed decrement
		got, err := svc.GetProduct(product.ID)
		assert.NoError(t, err)
		assert.Equal(t, 3, got.StockQuantity)

		// Draining to exactly zero is fine
		assert.NoError(t, svc.AdjustStock(nil, product.ID, -3))
		got, err = svc.GetProduct(product.ID)
		assert.NoError(t, err)
		assert.Zero(t, got.StockQuantity)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, svc := setupCatalogTest(t)

		err := svc.AdjustStock(nil, 9999, 5)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestSetStock(t *testing.T) {
	_, svc := setupCatalogTest(t)
	category := createCategory(t, svc, "veg")
	product, err := svc.CreateProduct(&catalog.CreateProductRequest{
		SKU:           "SET-1",
		Name:          "Settable",
		Slug:          "settable",
		Price:         100,
		CategoryID:    category.ID,
		StockQuantity: 5,
	})
	assert.NoError(t, err)

	updated, err := svc.SetStock(product.ID, 42)
	assert.NoError(t, err)
	assert.Equal(t, 42, updated.StockQuantity)

	_, err = svc.SetStock(product.ID, -1)
	assert.Error(t, err)
}

func TestGetProducts(t *testing.T) {
	_, svc := setupCatalogTest(t)
	veg := createCategory(t, svc, "veg")
	fruit := createCategory(t, svc, "fruit")

	for i, spec := range []struct {
		sku      string
		name     string
		price    int64
		category uint
	}{
		{"V-1", "Carrots", 150, veg.ID},
		{"V-2", "Potatoes", 120, veg.ID},
		{"F-1", "Apples", 300, fruit.ID},
	} {
		_, err := svc.CreateProduct(&catalog.CreateProductRequest{
			SKU:           spec.sku,
			Name:          spec.name,
			Slug:          spec.sku,
			Price:         spec.price,
			CategoryID:    spec.category,
			StockQuantity: 10 + i,
		})
		assert.NoError(t, err)
	}

	t.Run("filters by category", func(t *testing.T) {
		response, err := svc.GetProducts(&catalog.ProductListRequest{Page: 1, Limit: 20, CategoryID: veg.ID})
		assert.NoError(t, err)
		assert.Len(t, response.Products, 2)
		assert.Equal(t, int64(2), response.Pagination.Total)
	})

	t.Run("searches by name", func(t *testing.T) {
		response, err := svc.GetProducts(&catalog.ProductListRequest{Page: 1, Limit: 20, Search: "apple"})
		assert.NoError(t, err)
		assert.Len(t, response.Products, 1)
		assert.Equal(t, "Apples", response.Products[0].Name)
	})

	t.Run("excludes inactive products", func(t *testing.T) {
		inactive := false
		var target catalog.Product
		response, err := svc.GetProducts(&catalog.ProductListRequest{Page: 1, Limit: 20})
		assert.NoError(t, err)
		target = response.Products[0]

		_, err = svc.UpdateProduct(target.ID, &catalog.UpdateProductRequest{IsActive: &inactive})
		assert.NoError(t, err)

		response, err = svc.GetProducts(&catalog.ProductListRequest{Page: 1, Limit: 20})
		assert.NoError(t, err)
		assert.Len(t, response.Products, 2)
	})

	t.Run("paginates", func(t *testing.T) {
		response, err := svc.GetProducts(&catalog.ProductListRequest{Page: 1, Limit: 1})
		assert.NoError(t, err)
		assert.Len(t, response.Products, 1)
		assert.True(t, response.Pagination.HasNext)
		assert.False(t, response.Pagination.HasPrev)
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("blocks deletion while products are attached", func(t *testing.T) {
		_, svc := setupCatalogTest(t)
		category := createCategory(t, svc, "veg")

		_, err := svc.CreateProduct(&catalog.CreateProductRequest{
			SKU:        "DEL-1",
			Name:       "Attached",
			Slug:       "attached",
			Price:      100,
			CategoryID: category.ID,
		})
		assert.NoError(t, err)

		err = svc.DeleteCategory(category.ID)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be deleted")
	})

	t.Run("deletes an empty category", func(t *testing.T) {
		_, svc := setupCatalogTest(t)
		category := createCategory(t, svc, "empty")

		assert.NoError(t, svc.DeleteCategory(category.ID))

		categories, err := svc.GetCategories()
		assert.NoError(t, err)
		assert.Empty(t, categories)
	})
}

func TestDeleteProduct(t *testing.T) {
	_, svc := setupCatalogTest(t)
	category := createCategory(t, svc, "veg")
	product, err := svc.CreateProduct(&catalog.CreateProductRequest{
		SKU:        "GONE-1",
		Name:       "Ephemeral",
		Slug:       "ephemeral",
		Price:      100,
		CategoryID: category.ID,
	})
	assert.NoError(t, err)

	assert.NoError(t, svc.DeleteProduct(product.ID))

	_, err = svc.GetProduct(product.ID)
	assert.Error(t, err)

	assert.Error(t, svc.DeleteProduct(9999))
}
