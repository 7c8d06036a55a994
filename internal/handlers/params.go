package handlers

import (
	"strconv"
	"strings"

	"inkpost/internal/apperr"
	"inkpost/internal/models"
	"inkpost/internal/services"

	"github.com/gin-gonic/gin"
)

// parseListQuery reads the GET /api/posts query string. Range checks on page
// and limit are left to the query builder.
func parseListQuery(c *gin.Context) (services.PostFilter, services.PageRequest, error) {
	var (
		f services.PostFilter
		p services.PageRequest
	)

	f.Search = strings.TrimSpace(c.Query("search"))
	if raw := c.Query("tags"); raw != "" {
		f.Tags = strings.Split(raw, ",")
	}
	// Only the literal values filter; anything else means "either".
	switch c.Query("isFeatured") {
	case "true":
		v := true
		f.IsFeatured = &v
	case "false":
		v := false
		f.IsFeatured = &v
	}
	f.Status = models.PostStatus(strings.ToUpper(strings.TrimSpace(c.Query("status"))))
	f.AuthorID = strings.TrimSpace(c.Query("authorId"))

	var err error
	if p.Page, err = queryInt(c, "page"); err != nil {
		return f, p, err
	}
	if p.Limit, err = queryInt(c, "limit"); err != nil {
		return f, p, err
	}
	p.SortBy = c.Query("sortBy")
	p.SortOrder = c.Query("sortOrder")
	return f, p, nil
}

// queryInt returns 0 when key is absent so the builder applies its default.
func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Newf(apperr.ValidationFailed, "%s must be an integer", key)
	}
	if n == 0 {
		return 0, apperr.Newf(apperr.ValidationFailed, "%s must be at least 1", key)
	}
	return n, nil
}
