package middleware

import (
	"log/slog"
	"net/http"

	"inkpost/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Fail translates err, writes the failure envelope and aborts the chain.
// The raw cause is logged but never written to the client.
func Fail(c *gin.Context, err error) {
	t := apperr.Translate(err)
	if t.Status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"kind", t.Kind.String(),
			"status", t.Status,
			"error", err,
		)
	} else {
		slog.Debug("request rejected",
			"path", c.Request.URL.Path,
			"kind", t.Kind.String(),
			"status", t.Status,
			"error", err,
		)
	}
	c.AbortWithStatusJSON(t.Status, gin.H{
		"data":    []any{},
		"error":   t.Message,
		"details": t.Details,
	})
}
