package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"barangay-hub/internal/api/response"
	"barangay-hub/internal/service"
)

type StatsHandler struct {
	statsService     *service.StatsService
	analyticsService *service.AnalyticsService
}

func NewStatsHandler(statsService *service.StatsService, analyticsService *service.AnalyticsService) *StatsHandler {
	return &StatsHandler{
		statsService:     statsService,
		analyticsService: analyticsService,
	}
}

func RegisterStatsRoutes(group gin.IRouter, statsService *service.StatsService, analyticsService *service.AnalyticsService) {
	handler := NewStatsHandler(statsService, analyticsService)

	if statsService != nil {
		stats := group.Group("/stats")
		stats.GET("/dashboard", handler.Dashboard)
		stats.GET("/dashboard/resident", handler.ResidentDashboard)
	}

	if analyticsService != nil {
		analytics := group.Group("/analytics")
		analytics.GET("/ml-insights", handler.MLInsights)
		analytics.GET("/trends", handler.Trends)
	}
}

func (h *StatsHandler) Dashboard(c *gin.Context) {
	stats, err := h.statsService.Dashboard(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
		return
	}
	response.Success(c, stats)
}

func (h *StatsHandler) ResidentDashboard(c *gin.Context) {
	stats, err := h.statsService.ResidentDashboard(c.Request.Context(), c.Query("email"))
	if err != nil {
		handleSubmissionServiceError(c, err)
		return
	}
	response.Success(c, stats)
}

// The analytics endpoints never fail; the service degrades to safe defaults
// so dashboard panels always have arrays to iterate.
func (h *StatsHandler) MLInsights(c *gin.Context) {
	c.JSON(http.StatusOK, h.analyticsService.MLInsights(c.Request.Context()))
}

func (h *StatsHandler) Trends(c *gin.Context) {
	c.JSON(http.StatusOK, h.analyticsService.Trends(c.Request.Context()))
}
