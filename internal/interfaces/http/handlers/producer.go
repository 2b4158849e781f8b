// internal/interfaces/http/handlers/producer.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/producer"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// ProducerHandler handles producer dashboard endpoints
type ProducerHandler struct {
	producerService *producer.Service
	config          *config.Config
}

// NewProducerHandler creates a new producer handler
func NewProducerHandler(db *gorm.DB, cfg *config.Config) *ProducerHandler {
	return &ProducerHandler{
		producerService: producer.NewService(db, cfg),
		config:          cfg,
	}
}

// GetEarnings handles GET /producer/earnings
func (h *ProducerHandler) GetEarnings(c *gin.Context) {
	producerID, ok := middleware.GetCustomerIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	earnings, err := h.producerService.GetEarnings(producerID, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve earnings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Earnings retrieved successfully",
		"data":    earnings,
	})
}
