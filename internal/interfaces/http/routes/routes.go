// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires all route groups onto the API router
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	setupAuthRoutes(rg, db, cfg)
	setupCatalogRoutes(rg, db, cfg)
	setupCartRoutes(rg, db, redisClient, cfg)
	setupCheckoutRoutes(rg, db, redisClient, cfg)
	setupOrderRoutes(rg, db, redisClient, cfg)
	setupProducerRoutes(rg, db, cfg)
	setupAdminRoutes(rg, db, redisClient, cfg)
}

func setupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/profile", authHandler.UpdateProfile)
		}
	}
}

func setupCatalogRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	catalogHandler := handlers.NewCatalogHandler(db, cfg)

	products := rg.Group("/products")
	{
		products.GET("", catalogHandler.ListProducts)
		products.GET("/:id", catalogHandler.GetProduct)
		products.GET("/slug/:slug", catalogHandler.GetProductBySlug)
	}

	rg.GET("/categories", catalogHandler.ListCategories)
	rg.GET("/brands", catalogHandler.ListBrands)
}

func setupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)

	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.GET("/badge", cartHandler.GetBadge)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:id", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:id", cartHandler.RemoveCartItem)
		cart.DELETE("", cartHandler.ClearCart)
	}
}

func setupCheckoutRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	checkoutHandler := handlers.NewCheckoutHandler(db, redisClient, cfg)

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(cfg))
	{
		checkout.GET("", checkoutHandler.GetSummary)
		checkout.POST("", checkoutHandler.PlaceOrder)
	}
}

func setupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(db, redisClient, cfg)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.ListMyOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.POST("/:id/cancel", orderHandler.CancelOrder)
		orders.GET("/:id/invoice", orderHandler.DownloadInvoice)
	}
}

func setupProducerRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	producerHandler := handlers.NewProducerHandler(db, cfg)

	producer := rg.Group("/producer")
	producer.Use(middleware.AuthMiddleware(cfg))
	producer.Use(middleware.ProducerMiddleware())
	{
		producer.GET("/earnings", producerHandler.GetEarnings)
	}
}

func setupAdminRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	catalogHandler := handlers.NewCatalogHandler(db, cfg)
	orderHandler := handlers.NewOrderHandler(db, redisClient, cfg)
	analyticsHandler := handlers.NewAnalyticsHandler(db, cfg)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		products := admin.Group("/products")
		{
			products.POST("", catalogHandler.CreateProduct)
			products.PUT("/:id", catalogHandler.UpdateProduct)
			products.DELETE("/:id", catalogHandler.DeleteProduct)
			products.PUT("/:id/stock", catalogHandler.SetStock)
		}

		categories := admin.Group("/categories")
		{
			categories.POST("", catalogHandler.CreateCategory)
			categories.DELETE("/:id", catalogHandler.DeleteCategory)
		}

		brands := admin.Group("/brands")
		{
			brands.POST("", catalogHandler.CreateBrand)
			brands.DELETE("/:id", catalogHandler.DeleteBrand)
		}

		orders := admin.Group("/orders")
		{
			orders.GET("", orderHandler.ListOrders)
			orders.PUT("/:id/status", orderHandler.UpdateOrderStatus)
		}

		analytics := admin.Group("/analytics")
		{
			analytics.GET("/dashboard", analyticsHandler.GetDashboard)
			analytics.GET("/sales", analyticsHandler.GetSalesReport)
		}
	}
}
