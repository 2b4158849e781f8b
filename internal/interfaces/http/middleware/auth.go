// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

// AuthMiddleware creates JWT authentication middleware
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("customer_id", claims.UserID)
		c.Set("customer_email", claims.Email)
		c.Set("is_admin", claims.IsAdmin)
		c.Set("is_producer", claims.IsProducer)
		c.Set("token_claims", claims)

		c.Next()
	}
}

// AdminMiddleware ensures the authenticated customer is an admin
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, exists := c.Get("is_admin")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if !isAdmin.(bool) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ProducerMiddleware ensures the authenticated customer is a producer.
// Admins pass as well.
func ProducerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		isProducer, exists := c.Get("is_producer")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if !isProducer.(bool) && !IsAdminFromContext(c) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Producer access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetCustomerIDFromContext extracts the customer ID from gin context
func GetCustomerIDFromContext(c *gin.Context) (uint, bool) {
	customerID, exists := c.Get("customer_id")
	if !exists {
		return 0, false
	}
	return customerID.(uint), true
}

// IsAdminFromContext checks if the customer is an admin from gin context
func IsAdminFromContext(c *gin.Context) bool {
	isAdmin, exists := c.Get("is_admin")
	if !exists {
		return false
	}
	return isAdmin.(bool)
}

// GetActorFromContext builds the explicit identity passed to order
// operations
func GetActorFromContext(c *gin.Context) (order.Actor, bool) {
	customerID, ok := GetCustomerIDFromContext(c)
	if !ok {
		return order.Actor{}, false
	}
	return order.Actor{
		CustomerID: customerID,
		IsAdmin:    IsAdminFromContext(c),
	}, true
}
