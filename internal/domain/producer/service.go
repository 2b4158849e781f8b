// internal/domain/producer/service.go
package producer

import (
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// Service computes the earnings dashboard a producer sees for their own
// products
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new producer service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// Earnings represents a producer's earnings dashboard
type Earnings struct {
	TotalEarnings     int64              `json:"total_earnings"`      // In cents
	EarningsThisMonth int64              `json:"earnings_this_month"` // In cents
	TotalUnitsSold    int64              `json:"total_units_sold"`
	TotalProducts     int64              `json:"total_products"`
	ActiveProducts    int64              `json:"active_products"`
	TopProducts       []ProductSalesData `json:"top_products"`
	DailyEarnings     []TimeSeriesData   `json:"daily_earnings"`
}

// ProductSalesData represents sales for one product
type ProductSalesData struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	TotalSold int64  `json:"total_sold"`
	Revenue   int64  `json:"revenue"` // In cents
}

// TimeSeriesData represents one dated data point
type TimeSeriesData struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
	Count int64  `json:"count,omitempty"`
}

// GetEarnings computes earnings for the producer over the last `days` days
// of the daily series. Cancelled orders never count towards earnings.
func (s *Service) GetEarnings(producerID uint, days int) (*Earnings, error) {
	if days <= 0 {
		days = 30
	}

	earnings := &Earnings{}

	now := time.Now().UTC()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	startDate := now.AddDate(0, 0, -days)

	s.db.Raw(`
		SELECT COALESCE(SUM(oi.total_price), 0)
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		JOIN products p ON oi.product_id = p.id
		WHERE p.producer_id = ? AND o.status != 'cancelled'
	`, producerID).Scan(&earnings.TotalEarnings)

	s.db.Raw(`
		SELECT COALESCE(SUM(oi.total_price), 0)
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		JOIN products p ON oi.product_id = p.id
		WHERE p.producer_id = ? AND o.status != 'cancelled' AND o.created_at >= ?
	`, producerID, thisMonth).Scan(&earnings.EarningsThisMonth)

	s.db.Raw(`
		SELECT COALESCE(SUM(oi.quantity), 0)
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		JOIN products p ON oi.product_id = p.id
		WHERE p.producer_id = ? AND o.status != 'cancelled'
	`, producerID).Scan(&earnings.TotalUnitsSold)

	s.db.Raw("SELECT COUNT(*) FROM products WHERE producer_id = ? AND deleted_at IS NULL", producerID).Scan(&earnings.TotalProducts)
	s.db.Raw("SELECT COUNT(*) FROM products WHERE producer_id = ? AND is_active = true AND deleted_at IS NULL", producerID).Scan(&earnings.ActiveProducts)

	productRows, err := s.db.Raw(`
		SELECT
			p.id,
			p.name,
			p.sku,
			COALESCE(SUM(oi.quantity), 0) as total_sold,
			COALESCE(SUM(oi.total_price), 0) as revenue
		FROM products p
		JOIN order_items oi ON p.id = oi.product_id
		JOIN orders o ON oi.order_id = o.id
		WHERE p.producer_id = ? AND o.status != 'cancelled'
		GROUP BY p.id, p.name, p.sku
		ORDER BY revenue DESC
		LIMIT 10
	`, producerID).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}
	defer productRows.Close()

	for productRows.Next() {
		var data ProductSalesData
		if err := productRows.Scan(&data.ProductID, &data.Name, &data.SKU, &data.TotalSold, &data.Revenue); err != nil {
			continue
		}
		earnings.TopProducts = append(earnings.TopProducts, data)
	}

	dailyRows, err := s.db.Raw(`
		SELECT
			DATE(o.created_at) as date,
			COALESCE(SUM(oi.total_price), 0) as revenue,
			COALESCE(SUM(oi.quantity), 0) as units
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		JOIN products p ON oi.product_id = p.id
		WHERE p.producer_id = ? AND o.status != 'cancelled' AND o.created_at >= ?
		GROUP BY DATE(o.created_at)
		ORDER BY date
	`, producerID, startDate).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to get daily earnings: %w", err)
	}
	defer dailyRows.Close()

	for dailyRows.Next() {
		var data TimeSeriesData
		if err := dailyRows.Scan(&data.Date, &data.Value, &data.Count); err != nil {
			continue
		}
		earnings.DailyEarnings = append(earnings.DailyEarnings, data)
	}

	return earnings, nil
}
