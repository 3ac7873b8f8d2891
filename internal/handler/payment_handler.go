package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/api/payments")
	{
		payments.POST("", h.Create)
		payments.GET("", h.List)
		payments.DELETE("/:id", h.Delete)
	}
}

// Create records a payment against an invoice
// @Summary      Record payment
// @Description  Applies a payment; the invoice reference accepts an id, an exact number, or a number prefix. The invoice status is recomputed in the same transaction.
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePaymentRequest  true  "Create Payment Payload"
// @Success      201      {object}  response.Response{data=service.PaymentResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payment, err := h.paymentService.Create(c.Request.Context(), middleware.TenantID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, payment))
}

// List returns a paginated payment list
// @Summary      List payments
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        invoice_id  query     string  false  "Restrict to one invoice"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Items per page (default 20, max 100)"
// @Success      200         {object}  response.Response{data=[]service.PaymentResponse}
// @Router       /api/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	page, limit := pagingParams(c)

	payments, total, err := h.paymentService.List(c.Request.Context(), middleware.TenantID(c), c.Query("invoice_id"), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, payments, page, limit, total))
}

// Delete removes a payment and recomputes the invoice status
// @Summary      Delete payment
// @Tags         payments
// @Security     BearerAuth
// @Param        id  path  string  true  "Payment ID"
// @Success      204
// @Failure      404  {object}  response.Response
// @Router       /api/payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	if err := h.paymentService.Delete(c.Request.Context(), middleware.TenantID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
