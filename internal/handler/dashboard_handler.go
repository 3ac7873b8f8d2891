package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	dashboard := router.Group("/api/dashboard")
	{
		dashboard.GET("/summary", h.GetSummary)
		dashboard.GET("/aging", h.GetAging)
	}
}

// GetSummary returns the headline receivable/payable figures
// @Summary      Dashboard summary
// @Description  Outstanding receivables/payables, overdue amount, and counts by status
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.DashboardSummary}
// @Failure      500  {object}  response.Response
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.dashboardService.GetSummary(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// GetAging returns receivable aging buckets
// @Summary      Receivable aging
// @Description  Unpaid invoices grouped into days-past-due buckets (current, 0-30, 31-60, 61-90, 90+)
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.AgingBucket}
// @Failure      500  {object}  response.Response
// @Router       /api/dashboard/aging [get]
func (h *DashboardHandler) GetAging(c *gin.Context) {
	buckets, err := h.dashboardService.GetAging(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, buckets))
}
