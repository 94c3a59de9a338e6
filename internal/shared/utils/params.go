package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"kinora/internal/shared/constants"
	"kinora/internal/shared/errors"
)

// ParseUintParam parses a numeric ID from a URL path parameter.
func ParseUintParam(c *gin.Context, paramName, entityName string) (uint, error) {
	raw := c.Param(paramName)
	if raw == "" {
		return 0, errors.NewValidationError(entityName + " ID is required")
	}

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.NewValidationError("invalid " + entityName + " ID")
	}

	return uint(id), nil
}

// ParsePagination reads page/page_size query parameters with defaults and caps.
func ParsePagination(c *gin.Context) (page, pageSize int) {
	page = constants.DefaultPage
	pageSize = constants.DefaultPageSize

	if raw := c.Query("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page = v
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			pageSize = v
		}
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	return page, pageSize
}

// ProfileIDFromContext returns the authenticated profile ID, or nil for
// anonymous requests.
func ProfileIDFromContext(c *gin.Context) *uint {
	v, ok := c.Get(constants.ContextKeyProfileID)
	if !ok {
		return nil
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		return nil
	}
	return &id
}

// IsAdminFromContext reports whether the request carries an admin role claim.
func IsAdminFromContext(c *gin.Context) bool {
	v, ok := c.Get(constants.ContextKeyRole)
	if !ok {
		return false
	}
	role, ok := v.(string)
	return ok && role == constants.RoleAdmin
}
