// internal/domain/catalog/service.go
package catalog

import (
	"fmt"
	"strings"

	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	CategoryID uint   `form:"category_id"`
	BrandID    uint   `form:"brand_id"`
	ProducerID uint   `form:"producer_id"`
	Search     string `form:"search"`
	SortBy     string `form:"sort_by,default=created_at"`
	SortOrder  string `form:"sort_order,default=desc"`
}

// ProductListResponse represents a paginated product listing
type ProductListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	SKU               string `json:"sku" binding:"required"`
	Name              string `json:"name" binding:"required"`
	Slug              string `json:"slug" binding:"required"`
	Description       string `json:"description"`
	Price             int64  `json:"price" binding:"required,gt=0"`
	CategoryID        uint   `json:"category_id" binding:"required"`
	BrandID           *uint  `json:"brand_id"`
	ProducerID        *uint  `json:"producer_id"`
	ImageURL          string `json:"image_url"`
	StockQuantity     int    `json:"stock_quantity" binding:"min=0"`
	LowStockThreshold int    `json:"low_stock_threshold"`
}

// UpdateProductRequest represents product update data
type UpdateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       *int64 `json:"price"`
	CategoryID  *uint  `json:"category_id"`
	BrandID     *uint  `json:"brand_id"`
	ImageURL    string `json:"image_url"`
	IsActive    *bool  `json:"is_active"`
}

// CreateCategoryRequest represents category creation data
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

// CreateBrandRequest represents brand creation data
type CreateBrandRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
}

// PRODUCT READS

// GetProduct retrieves a single active product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var prod Product
	result := s.db.Preload("Category").Preload("Brand").
		Where("id = ?", id).
		First(&prod)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &prod, nil
}

// GetProductBySlug retrieves a single product by slug
func (s *Service) GetProductBySlug(slug string) (*Product, error) {
	var prod Product
	result := s.db.Preload("Category").Preload("Brand").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&prod)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &prod, nil
}

// GetProducts retrieves products with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) (*ProductListResponse, error) {
	var products []Product
	var total int64

	query := s.db.Model(&Product{}).
		Preload("Category").
		Preload("Brand").
		Where("is_active = ?", true)

	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}
	if req.BrandID > 0 {
		query = query.Where("brand_id = ?", req.BrandID)
	}
	if req.ProducerID > 0 {
		query = query.Where("producer_id = ?", req.ProducerID)
	}
	if req.Search != "" {
		pattern := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query = query.Order(s.buildOrderClause(req.SortBy, req.SortOrder))

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ProductListResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// PRODUCT WRITES (admin / producer back-office)

// CreateProduct creates a new product
func (s *Service) CreateProduct(req *CreateProductRequest) (*Product, error) {
	var existing Product
	if err := s.db.Where("sku = ? OR slug = ?", req.SKU, req.Slug).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("product with this SKU or slug already exists")
	}

	var category Category
	if err := s.db.First(&category, req.CategoryID).Error; err != nil {
		return nil, fmt.Errorf("category not found")
	}

	prod := Product{
		SKU:               req.SKU,
		Name:              req.Name,
		Slug:              req.Slug,
		Description:       req.Description,
		Price:             req.Price,
		CategoryID:        req.CategoryID,
		BrandID:           req.BrandID,
		ProducerID:        req.ProducerID,
		ImageURL:          req.ImageURL,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
		IsActive:          true,
	}
	if prod.LowStockThreshold <= 0 {
		prod.LowStockThreshold = 5
	}

	if err := s.db.Create(&prod).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &prod, nil
}

// UpdateProduct updates mutable product fields
func (s *Service) UpdateProduct(id uint, req *UpdateProductRequest) (*Product, error) {
	prod, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, fmt.Errorf("price must be greater than 0")
		}
		updates["price"] = *req.Price
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.BrandID != nil {
		updates["brand_id"] = *req.BrandID
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(prod).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return s.GetProduct(id)
}

// DeleteProduct soft-deletes a product
func (s *Service) DeleteProduct(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// STOCK

// AdjustStock applies a relative stock change atomically. Negative deltas
// fail when they would drive stock below zero; no row is modified in that
// case so callers can treat RowsAffected==0 as insufficient stock.
func (s *Service) AdjustStock(tx *gorm.DB, productID uint, delta int) error {
	if tx == nil {
		tx = s.db
	}

	query := tx.Model(&Product{}).Where("id = ?", productID)
	if delta < 0 {
		query = query.Where("stock_quantity >= ?", -delta)
	}

	result := query.UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to adjust stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if delta < 0 {
			return fmt.Errorf("insufficient stock for product %d", productID)
		}
		return fmt.Errorf("product %d not found", productID)
	}

	return nil
}

// SetStock overwrites stock to an absolute value (admin back-office only;
// the order flow always goes through AdjustStock)
func (s *Service) SetStock(productID uint, quantity int) (*Product, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("stock quantity cannot be negative")
	}

	prod, err := s.GetProduct(productID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(prod).UpdateColumn("stock_quantity", quantity).Error; err != nil {
		return nil, fmt.Errorf("failed to set stock: %w", err)
	}

	prod.StockQuantity = quantity
	return prod, nil
}

// CATEGORIES

// GetCategories retrieves all active categories
func (s *Service) GetCategories() ([]Category, error) {
	var categories []Category
	if err := s.db.Where("is_active = ?", true).Order("sort_order ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// CreateCategory creates a new category
func (s *Service) CreateCategory(req *CreateCategoryRequest) (*Category, error) {
	var existing Category
	if err := s.db.Where("slug = ?", req.Slug).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("category with slug '%s' already exists", req.Slug)
	}

	category := Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}

	if err := s.db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return &category, nil
}

// DeleteCategory soft-deletes a category with no products attached
func (s *Service) DeleteCategory(id uint) error {
	var productCount int64
	s.db.Model(&Product{}).Where("category_id = ?", id).Count(&productCount)
	if productCount > 0 {
		return fmt.Errorf("category has %d products and cannot be deleted", productCount)
	}

	result := s.db.Delete(&Category{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("category not found")
	}
	return nil
}

// BRANDS

// GetBrands retrieves all active brands
func (s *Service) GetBrands() ([]Brand, error) {
	var brands []Brand
	if err := s.db.Where("is_active = ?", true).Order("name ASC").Find(&brands).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve brands: %w", err)
	}
	return brands, nil
}

// CreateBrand creates a new brand
func (s *Service) CreateBrand(req *CreateBrandRequest) (*Brand, error) {
	var existing Brand
	if err := s.db.Where("slug = ?", req.Slug).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("brand with slug '%s' already exists", req.Slug)
	}

	brand := Brand{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Logo:        req.Logo,
		IsActive:    true,
	}

	if err := s.db.Create(&brand).Error; err != nil {
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}

	return &brand, nil
}

// DeleteBrand soft-deletes a brand; products keep a dangling brand_id cleared
// by the foreign key's SET NULL constraint
func (s *Service) DeleteBrand(id uint) error {
	result := s.db.Delete(&Brand{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete brand: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("brand not found")
	}
	return nil
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"price":      true,
		"name":       true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
