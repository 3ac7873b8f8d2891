package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type BillHandler struct {
	billService service.BillService
}

func NewBillHandler(billService service.BillService) *BillHandler {
	return &BillHandler{billService: billService}
}

func (h *BillHandler) RegisterRoutes(router *gin.RouterGroup) {
	bills := router.Group("/api/bills")
	{
		bills.POST("", h.Create)
		bills.GET("", h.List)
		bills.GET("/:id", h.Get)
		bills.PUT("/:id", h.Update)
		bills.DELETE("/:id", h.Delete)
	}
}

// Create creates a new bill
// @Summary      Create bill
// @Description  Creates a payable bill; the vendor reference accepts an id, a name, or an object
// @Tags         bills
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateBillRequest  true  "Create Bill Payload"
// @Success      201      {object}  response.Response{data=service.BillResponse}
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/bills [post]
func (h *BillHandler) Create(c *gin.Context) {
	var req service.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	bill, err := h.billService.Create(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, bill))
}

// List returns a paginated bill list
// @Summary      List bills
// @Tags         bills
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (draft, open, approved, paid, void, or a synonym)"
// @Param        search  query     string  false  "Match against number and vendor name"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20, max 100)"
// @Success      200     {object}  response.Response{data=[]service.BillResponse}
// @Failure      422     {object}  response.Response
// @Router       /api/bills [get]
func (h *BillHandler) List(c *gin.Context) {
	page, limit := pagingParams(c)

	filter := service.BillFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}

	bills, total, err := h.billService.List(c.Request.Context(), middleware.TenantID(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, bills, page, limit, total))
}

// Get returns one bill with its items
// @Summary      Get bill
// @Tags         bills
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Bill ID"
// @Success      200  {object}  response.Response{data=service.BillResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/bills/{id} [get]
func (h *BillHandler) Get(c *gin.Context) {
	bill, err := h.billService.Get(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, bill))
}

// Update partially updates a bill
// @Summary      Update bill
// @Description  Partial update; an unrecognized status value is ignored rather than rejected
// @Tags         bills
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Bill ID"
// @Param        payload  body      service.UpdateBillRequest  true  "Update Bill Payload"
// @Success      200      {object}  response.Response{data=service.BillResponse}
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/bills/{id} [put]
func (h *BillHandler) Update(c *gin.Context) {
	var req service.UpdateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	bill, err := h.billService.Update(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, bill))
}

// Delete soft-deletes a bill
// @Summary      Delete bill
// @Tags         bills
// @Security     BearerAuth
// @Param        id  path  string  true  "Bill ID"
// @Success      204
// @Failure      404  {object}  response.Response
// @Router       /api/bills/{id} [delete]
func (h *BillHandler) Delete(c *gin.Context) {
	if err := h.billService.Delete(c.Request.Context(), middleware.TenantID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
