package handlers

import (
	"net/http"

	"inkpost/internal/apperr"
	"inkpost/internal/identity"
	"inkpost/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Respond writes the success envelope.
func Respond(c *gin.Context, code int, message string, data any) {
	c.JSON(code, gin.H{
		"data":    data,
		"message": message,
	})
}

// Fail writes the failure envelope; the handler must return right after.
func Fail(c *gin.Context, err error) {
	middleware.Fail(c, err)
}

// bindJSON decodes and validates the body, failing the request on error.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		Fail(c, err)
		return false
	}
	return true
}

// principal returns the caller placed on the context by the auth gate.
func principal(c *gin.Context) (identity.Principal, bool) {
	p := middleware.CurrentPrincipal(c)
	if p == nil {
		Fail(c, apperr.New(apperr.Unauthenticated, "no authenticated user"))
		return identity.Principal{}, false
	}
	return *p, true
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
