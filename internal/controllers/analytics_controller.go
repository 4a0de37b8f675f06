package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linkpulse/internal/service"
)

type AnalyticsController struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsController(analyticsService service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{
		analyticsService: analyticsService,
	}
}

// GetLinkAnalytics handles GET /api/v1/link/:id/analytics - returns the
// full analytics bundle for one link
func (ac *AnalyticsController) GetLinkAnalytics(c *gin.Context) {
	id := c.Param("id")

	bundle, err := ac.analyticsService.GetLinkAnalytics(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}

	c.JSON(http.StatusOK, bundle)
}

// GetDashboard handles GET /api/v1/dashboard - returns cross-link totals
func (ac *AnalyticsController) GetDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, ac.analyticsService.GetDashboardStats())
}
