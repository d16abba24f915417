package handlers

import (
	"strconv"

	"demand-forecast-api/history"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// PaginationParams come from ?limit= and ?before=. before is either a
// next_cursor from a previous page or a bare RFC 3339 time.
type PaginationParams struct {
	Limit  int
	Cursor *history.Cursor
}

type CursorResponse struct {
	Data       any    `json:"data"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// ParsePagination clamps limit silently but rejects an unreadable cursor.
func ParsePagination(c *gin.Context) (PaginationParams, error) {
	p := PaginationParams{Limit: DefaultLimit}

	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		p.Limit = min(l, MaxLimit)
	}

	if before := c.Query("before"); before != "" {
		cur, err := history.ParseCursor(before)
		if err != nil {
			return p, err
		}
		p.Cursor = &cur
	}

	return p, nil
}
