// internal/interfaces/http/handlers/cart_handler_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeAuth stands in for the JWT middleware and pins the request identity
func fakeAuth(customerID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("customer_id", customerID)
		c.Set("is_admin", false)
		c.Next()
	}
}

func setupCartRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

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

	cartHandler := handlers.NewCartHandler(db, nil, &config.Config{})

	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api/v1")
	group := api.Group("/cart")
	group.Use(fakeAuth(1))
	{
		group.GET("", cartHandler.GetCart)
		group.GET("/badge", cartHandler.GetBadge)
		group.POST("/items", cartHandler.AddToCart)
		group.PUT("/items/:id", cartHandler.UpdateCartItem)
		group.DELETE("/items/:id", cartHandler.RemoveCartItem)
		group.DELETE("", cartHandler.ClearCart)
	}

	return r, db
}

func seedProduct(t *testing.T, db *gorm.DB, price int64, stock int) catalog.Product {
	category := catalog.Category{Name: "Test", Slug: "test", IsActive: true}
	if err := db.Where("slug = ?", "test").FirstOrCreate(&category).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}

	product := catalog.Product{
		SKU:           fmt.Sprintf("SKU-%d", stock),
		Slug:          fmt.Sprintf("sku-%d", stock),
		Name:          "Test Product",
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

func jsonRequest(method, path string, body interface{}) *http.Request {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestGetCartEmpty(t *testing.T) {
	router, _ := setupCartRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodGet, "/api/v1/cart", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data cart.CartResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Empty(t, response.Data.Items)
}

func TestAddToCartEndpoint(t *testing.T) {
	router, db := setupCartRouter(t)
	product := seedProduct(t, db, 500, 10)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/v1/cart/items", gin.H{
		"product_id": product.ID,
		"quantity":   2,
	}))

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data cart.CartResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Data.Items, 1)
	assert.Equal(t, int64(1000), response.Data.Totals.TotalAmount)
}

func TestAddToCartValidation(t *testing.T) {
	router, _ := setupCartRouter(t)

	// Missing quantity fails binding
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/v1/cart/items", gin.H{
		"product_id": 1,
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown product is rejected by the service
	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/v1/cart/items", gin.H{
		"product_id": 9999,
		"quantity":   1,
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateCartItemRejectsZeroQuantity(t *testing.T) {
	router, db := setupCartRouter(t)
	product := seedProduct(t, db, 500, 10)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/v1/cart/items", gin.H{
		"product_id": product.ID,
		"quantity":   2,
	}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPut, fmt.Sprintf("/api/v1/cart/items/%d", product.ID), gin.H{
		"quantity": 0,
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveCartItemIsIdempotent(t *testing.T) {
	router, _ := setupCartRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodDelete, "/api/v1/cart/items/9999", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClearCartEndpoint(t *testing.T) {
	router, db := setupCartRouter(t)
	product := seedProduct(t, db, 500, 10)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/v1/cart/items", gin.H{
		"product_id": product.ID,
		"quantity":   1,
	}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodDelete, "/api/v1/cart", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodGet, "/api/v1/cart/badge", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data cart.CartBadge `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Zero(t, response.Data.Count)
}
