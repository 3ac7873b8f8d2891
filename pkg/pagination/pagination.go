package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// Params is a validated page/limit pair. Offset is derived so list
// repositories can feed it straight into LIMIT/OFFSET queries.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Parse reads `page` and `limit` query parameters and clamps them to
// sane bounds. Anything non-numeric or out of range falls back to the
// defaults rather than failing the request.
func Parse(c *gin.Context) Params {
	return normalize(
		atoiOr(c.Query("page"), defaultPage),
		atoiOr(c.Query("limit"), defaultLimit),
	)
}

func normalize(page, limit int) Params {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}
	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

func atoiOr(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
