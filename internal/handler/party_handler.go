package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// CustomerHandler exposes the receivable-side party CRUD.
type CustomerHandler struct {
	customerService service.CustomerService
}

func NewCustomerHandler(customerService service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

func (h *CustomerHandler) RegisterRoutes(router *gin.RouterGroup) {
	customers := router.Group("/api/customers")
	{
		customers.POST("", h.Create)
		customers.GET("", h.List)
		customers.GET("/:id", h.Get)
		customers.PUT("/:id", h.Update)
		customers.DELETE("/:id", h.Delete)
	}
}

// Create creates a new customer
// @Summary      Create customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePartyRequest  true  "Create Customer Payload"
// @Success      201      {object}  response.Response{data=service.PartyResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req service.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), middleware.TenantID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, customer))
}

// List returns a paginated customer list
// @Summary      List customers
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Match against name, email, phone, code"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20, max 100)"
// @Success      200     {object}  response.Response{data=[]service.PartyResponse}
// @Router       /api/customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	page, limit := pagingParams(c)

	customers, total, err := h.customerService.List(c.Request.Context(), middleware.TenantID(c), c.Query("search"), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, customers, page, limit, total))
}

// Get returns one customer by id
// @Summary      Get customer
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  response.Response{data=service.PartyResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/customers/{id} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
	customer, err := h.customerService.Get(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// Update partially updates a customer
// @Summary      Update customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Customer ID"
// @Param        payload  body      service.UpdatePartyRequest  true  "Update Customer Payload"
// @Success      200      {object}  response.Response{data=service.PartyResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	var req service.UpdatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), middleware.TenantID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// Delete soft-deletes a customer
// @Summary      Delete customer
// @Tags         customers
// @Security     BearerAuth
// @Param        id  path  string  true  "Customer ID"
// @Success      204
// @Failure      404  {object}  response.Response
// @Router       /api/customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	if err := h.customerService.Delete(c.Request.Context(), middleware.TenantID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// VendorHandler mirrors CustomerHandler for the payable side.
type VendorHandler struct {
	vendorService service.VendorService
}

func NewVendorHandler(vendorService service.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

func (h *VendorHandler) RegisterRoutes(router *gin.RouterGroup) {
	vendors := router.Group("/api/vendors")
	{
		vendors.POST("", h.Create)
		vendors.GET("", h.List)
		vendors.GET("/:id", h.Get)
		vendors.PUT("/:id", h.Update)
		vendors.DELETE("/:id", h.Delete)
	}
}

// Create creates a new vendor
// @Summary      Create vendor
// @Tags         vendors
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePartyRequest  true  "Create Vendor Payload"
// @Success      201      {object}  response.Response{data=service.PartyResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/vendors [post]
func (h *VendorHandler) Create(c *gin.Context) {
	var req service.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vendor, err := h.vendorService.Create(c.Request.Context(), middleware.TenantID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, vendor))
}

// List returns a paginated vendor list
// @Summary      List vendors
// @Tags         vendors
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Match against name, email, phone, code"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20, max 100)"
// @Success      200     {object}  response.Response{data=[]service.PartyResponse}
// @Router       /api/vendors [get]
func (h *VendorHandler) List(c *gin.Context) {
	page, limit := pagingParams(c)

	vendors, total, err := h.vendorService.List(c.Request.Context(), middleware.TenantID(c), c.Query("search"), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, vendors, page, limit, total))
}

// Get returns one vendor by id
// @Summary      Get vendor
// @Tags         vendors
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Vendor ID"
// @Success      200  {object}  response.Response{data=service.PartyResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/vendors/{id} [get]
func (h *VendorHandler) Get(c *gin.Context) {
	vendor, err := h.vendorService.Get(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, vendor))
}

// Update partially updates a vendor
// @Summary      Update vendor
// @Tags         vendors
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Vendor ID"
// @Param        payload  body      service.UpdatePartyRequest  true  "Update Vendor Payload"
// @Success      200      {object}  response.Response{data=service.PartyResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/vendors/{id} [put]
func (h *VendorHandler) Update(c *gin.Context) {
	var req service.UpdatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vendor, err := h.vendorService.Update(c.Request.Context(), middleware.TenantID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, vendor))
}

// Delete soft-deletes a vendor
// @Summary      Delete vendor
// @Tags         vendors
// @Security     BearerAuth
// @Param        id  path  string  true  "Vendor ID"
// @Success      204
// @Failure      404  {object}  response.Response
// @Router       /api/vendors/{id} [delete]
func (h *VendorHandler) Delete(c *gin.Context) {
	if err := h.vendorService.Delete(c.Request.Context(), middleware.TenantID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
