package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// handlers answer with a fixed envelope: {"success": true, ...} on the happy
// path and {"success": false, "error": "..."} otherwise.

func respondOK(c *gin.Context, status int, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

type pagination struct {
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

const maxPageSize = 100

func parsePageLimit(c *gin.Context) (int64, int64) {
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func newPagination(page, limit, total int64) pagination {
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}
