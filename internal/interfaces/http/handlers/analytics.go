// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"net/http"

	"github.com/furnishop/furniture-backend/internal/config"
	"github.com/furnishop/furniture-backend/internal/domain/analytics"
	"github.com/furnishop/furniture-backend/internal/pkg/money"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AnalyticsHandler handles analytics endpoints
type AnalyticsHandler struct {
	analyticsService *analytics.Service
	accessTracker    *analytics.AccessTracker
	config           *config.Config
	logger           *logrus.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *analytics.Service, accessTracker *analytics.AccessTracker, cfg *config.Config, logger *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		accessTracker:    accessTracker,
		config:           cfg,
		logger:           logger,
	}
}

func (h *AnalyticsHandler) formatCurrency(a money.Amount) string {
	return a.Format(h.config.Invoice.CurrencySymbol)
}

// GetDashboard handles GET /admin/analytics/dashboard
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	stats, err := h.analyticsService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve dashboard statistics")
		return
	}

	formatted := gin.H{
		"total_revenue":     h.formatCurrency(stats.TotalRevenue),
		"total_profit":      nil,
		"total_orders":      stats.TotalOrders,
		"user_access_count": stats.UserAccessCount,
		"total_views":       stats.TotalViews,
		"raw":               stats,
	}
	if stats.TotalProfit != nil {
		formatted["total_profit"] = h.formatCurrency(*stats.TotalProfit)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard statistics retrieved successfully",
		"data":    formatted,
	})
}

// GetRevenue handles GET /admin/analytics/revenue
func (h *AnalyticsHandler) GetRevenue(c *gin.Context) {
	revenue, err := h.analyticsService.TotalRevenue(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve revenue")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Revenue retrieved successfully",
		"data": gin.H{
			"total_revenue": revenue,
			"formatted":     h.formatCurrency(revenue),
		},
	})
}

// GetProfit handles GET /admin/analytics/profit. Without any recorded profit
// the data is null rather than zero.
func (h *AnalyticsHandler) GetProfit(c *gin.Context) {
	profit, err := h.analyticsService.TotalProfit(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve profit")
		return
	}

	if profit == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "no profit data",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profit retrieved successfully",
		"data": gin.H{
			"total_profit": *profit,
			"formatted":    h.formatCurrency(*profit),
		},
	})
}

// GetChart handles GET /admin/analytics/chart
func (h *AnalyticsHandler) GetChart(c *gin.Context) {
	chart, err := h.analyticsService.ChartData(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve chart data")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Chart data retrieved successfully",
		"data":    chart,
	})
}

// GetAccess handles GET /admin/analytics/access
func (h *AnalyticsHandler) GetAccess(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.analyticsService.UserAccessCount(ctx)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve access statistics")
		return
	}
	views, err := h.analyticsService.TotalViews(ctx)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve access statistics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Access statistics retrieved successfully",
		"data": gin.H{
			"user_access_count": users,
			"total_views":       views,
		},
	})
}

// RecordAccess handles POST /access
func (h *AnalyticsHandler) RecordAccess(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.accessTracker.RecordAccess(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err, "Failed to record access")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Access recorded",
	})
}
