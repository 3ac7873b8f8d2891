package handler

import (
	"net/http"
	"strconv"
	"time"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	riskService     service.RiskService
	forecastService service.ForecastService
}

func NewAnalyticsHandler(riskService service.RiskService, forecastService service.ForecastService) *AnalyticsHandler {
	return &AnalyticsHandler{
		riskService:     riskService,
		forecastService: forecastService,
	}
}

func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	analytics := router.Group("/api/analytics")
	{
		analytics.GET("/risk", h.GetRisk)
		analytics.GET("/forecast", h.GetForecast)
	}
}

// GetRisk scores every open invoice for late-payment risk
// @Summary      Late-payment risk
// @Description  Scores each open invoice 0-100 with a band and factor breakdown, sorted by score descending
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.RiskItem}
// @Failure      500  {object}  response.Response
// @Router       /api/analytics/risk [get]
func (h *AnalyticsHandler) GetRisk(c *gin.Context) {
	items, err := h.riskService.Score(c.Request.Context(), middleware.TenantID(c), time.Now())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// GetForecast projects expected cash inflows across the horizon
// @Summary      Cash-in forecast
// @Description  Learns historical payment delays and spreads each open invoice's outstanding amount over future days
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Param        horizon_days          query     int     false  "Forecast horizon in days (default 30)"
// @Param        spread_days           query     int     false  "Days each amount is spread over (default 5)"
// @Param        spread_shape          query     string  false  "flat, linear, or geometric (default flat)"
// @Param        discount_uptake_pct   query     number  false  "What-if %% of amount taking an early-payment discount"
// @Param        discount_pull_days    query     int     false  "Days discounted amounts are pulled forward"
// @Param        collection_push_days  query     int     false  "Days of assumed collection pressure"
// @Success      200                   {object}  response.Response{data=service.ForecastResult}
// @Failure      500                   {object}  response.Response
// @Router       /api/analytics/forecast [get]
func (h *AnalyticsHandler) GetForecast(c *gin.Context) {
	opts := service.ForecastOptions{
		SpreadShape: c.Query("spread_shape"),
	}
	opts.HorizonDays, _ = strconv.Atoi(c.Query("horizon_days"))
	opts.SpreadDays, _ = strconv.Atoi(c.Query("spread_days"))
	opts.DiscountUptakePct, _ = strconv.ParseFloat(c.Query("discount_uptake_pct"), 64)
	opts.DiscountPullDays, _ = strconv.Atoi(c.Query("discount_pull_days"))
	opts.CollectionPushDays, _ = strconv.Atoi(c.Query("collection_push_days"))
	opts.MediumMultiplier, _ = strconv.ParseFloat(c.Query("medium_multiplier"), 64)
	opts.HighMultiplier, _ = strconv.ParseFloat(c.Query("high_multiplier"), 64)
	opts.CriticalMultiplier, _ = strconv.ParseFloat(c.Query("critical_multiplier"), 64)

	result, err := h.forecastService.Project(c.Request.Context(), middleware.TenantID(c), time.Now(), opts)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
