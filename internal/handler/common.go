package handler

import (
	"backend/pkg/apperror"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// writeError maps a service error onto its HTTP status via the
// apperror taxonomy and writes the standard error envelope.
func writeError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	c.JSON(status, response.Error(status, err.Error()))
}

func pagingParams(c *gin.Context) (page, limit int) {
	p := pagination.Parse(c)
	return p.Page, p.Limit
}
