// internal/domain/analytics/service.go
package analytics

import (
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles admin dashboard analytics
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new analytics service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// DashboardStats represents overall dashboard statistics
type DashboardStats struct {
	// Sales metrics
	TotalRevenue     int64 `json:"total_revenue"`      // In cents
	RevenueToday     int64 `json:"revenue_today"`      // In cents
	RevenueThisMonth int64 `json:"revenue_this_month"` // In cents

	// Order metrics
	TotalOrders     int64        `json:"total_orders"`
	OrdersToday     int64        `json:"orders_today"`
	OrdersThisMonth int64        `json:"orders_this_month"`
	OrdersByStatus  []StatusData `json:"orders_by_status"`

	// Customer metrics
	TotalCustomers        int64 `json:"total_customers"`
	NewCustomersThisMonth int64 `json:"new_customers_this_month"`

	// Product metrics
	TotalProducts      int64 `json:"total_products"`
	ActiveProducts     int64 `json:"active_products"`
	OutOfStockProducts int64 `json:"out_of_stock_products"`
	LowStockProducts   int64 `json:"low_stock_products"`

	AvgOrderValue int64 `json:"avg_order_value"` // In cents
}

// SalesReport represents sales over a period
type SalesReport struct {
	DailyRevenue  []TimeSeriesData   `json:"daily_revenue"`
	TotalSales    int64              `json:"total_sales"`
	TotalRevenue  int64              `json:"total_revenue"`
	AvgOrderValue int64              `json:"avg_order_value"`
	TopProducts   []ProductSalesData `json:"top_products"`
}

// Supporting data structures
type TimeSeriesData struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
	Count int64  `json:"count,omitempty"`
}

type StatusData struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
	Value  int64  `json:"value"`
}

type ProductSalesData struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	TotalSold int64  `json:"total_sold"`
	Revenue   int64  `json:"revenue"` // In cents
}

// GetDashboardStats retrieves overall dashboard statistics. Cancelled
// orders are excluded from revenue but counted in order totals.
func (s *Service) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	// Sales metrics
	s.db.Raw("SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status != 'cancelled'").Scan(&stats.TotalRevenue)
	s.db.Raw("SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status != 'cancelled' AND created_at >= ?", today).Scan(&stats.RevenueToday)
	s.db.Raw("SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status != 'cancelled' AND created_at >= ?", thisMonth).Scan(&stats.RevenueThisMonth)

	// Order metrics
	s.db.Raw("SELECT COUNT(*) FROM orders").Scan(&stats.TotalOrders)
	s.db.Raw("SELECT COUNT(*) FROM orders WHERE created_at >= ?", today).Scan(&stats.OrdersToday)
	s.db.Raw("SELECT COUNT(*) FROM orders WHERE created_at >= ?", thisMonth).Scan(&stats.OrdersThisMonth)

	statusRows, err := s.db.Raw(`
		SELECT status, COUNT(*) as count, COALESCE(SUM(total_amount), 0) as value
		FROM orders
		GROUP BY status
		ORDER BY count DESC
	`).Rows()
	if err == nil {
		defer statusRows.Close()
		for statusRows.Next() {
			var data StatusData
			if err := statusRows.Scan(&data.Status, &data.Count, &data.Value); err != nil {
				continue
			}
			stats.OrdersByStatus = append(stats.OrdersByStatus, data)
		}
	}

	// Customer metrics
	s.db.Raw("SELECT COUNT(*) FROM customers WHERE deleted_at IS NULL").Scan(&stats.TotalCustomers)
	s.db.Raw("SELECT COUNT(*) FROM customers WHERE deleted_at IS NULL AND created_at >= ?", thisMonth).Scan(&stats.NewCustomersThisMonth)

	// Product metrics
	s.db.Raw("SELECT COUNT(*) FROM products WHERE deleted_at IS NULL").Scan(&stats.TotalProducts)
	s.db.Raw("SELECT COUNT(*) FROM products WHERE deleted_at IS NULL AND is_active = true").Scan(&stats.ActiveProducts)
	s.db.Raw("SELECT COUNT(*) FROM products WHERE deleted_at IS NULL AND stock_quantity <= 0").Scan(&stats.OutOfStockProducts)
	s.db.Raw("SELECT COUNT(*) FROM products WHERE deleted_at IS NULL AND stock_quantity > 0 AND stock_quantity <= low_stock_threshold").Scan(&stats.LowStockProducts)

	if stats.TotalOrders > 0 {
		stats.AvgOrderValue = stats.TotalRevenue / stats.TotalOrders
	}

	return stats, nil
}

// GetSalesReport retrieves sales data for the last `days` days
func (s *Service) GetSalesReport(days int) (*SalesReport, error) {
	if days <= 0 {
		days = 30
	}

	report := &SalesReport{}
	startDate := time.Now().UTC().AddDate(0, 0, -days)

	rows, err := s.db.Raw(`
		SELECT
			DATE(created_at) as date,
			COALESCE(SUM(total_amount), 0) as revenue,
			COUNT(*) as order_count
		FROM orders
		WHERE created_at >= ? AND status != 'cancelled'
		GROUP BY DATE(created_at)
		ORDER BY date
	`, startDate).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to get daily revenue: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var data TimeSeriesData
		if err := rows.Scan(&data.Date, &data.Value, &data.Count); err != nil {
			continue
		}
		report.DailyRevenue = append(report.DailyRevenue, data)
	}

	s.db.Raw("SELECT COUNT(*) FROM orders WHERE created_at >= ? AND status != 'cancelled'", startDate).Scan(&report.TotalSales)
	s.db.Raw("SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE created_at >= ? AND status != 'cancelled'", startDate).Scan(&report.TotalRevenue)

	if report.TotalSales > 0 {
		report.AvgOrderValue = report.TotalRevenue / report.TotalSales
	}

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
		WHERE o.created_at >= ? AND o.status != 'cancelled'
		GROUP BY p.id, p.name, p.sku
		ORDER BY revenue DESC
		LIMIT 10
	`, startDate).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}
	defer productRows.Close()

	for productRows.Next() {
		var data ProductSalesData
		if err := productRows.Scan(&data.ProductID, &data.Name, &data.SKU, &data.TotalSold, &data.Revenue); err != nil {
			continue
		}
		report.TopProducts = append(report.TopProducts, data)
	}

	return report, nil
}
