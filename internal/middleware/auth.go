package middleware

import (
	"slices"

	"inkpost/internal/apperr"
	"inkpost/internal/identity"

	"github.com/gin-gonic/gin"
)

const PrincipalKey = "principal"

// Auth guards a route. An empty roles list admits any verified caller.
// Every failure aborts the chain before the next handler runs.
func Auth(resolver Resolver, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := resolver.Resolve(c)
		if err != nil {
			Fail(c, err)
			return
		}
		if p == nil {
			Fail(c, apperr.New(apperr.Unauthenticated, "no valid session or token was presented"))
			return
		}
		if !p.EmailVerified {
			Fail(c, apperr.New(apperr.EmailNotVerified, "the account email has not been verified"))
			return
		}
		if len(roles) > 0 && !slices.Contains(roles, p.Role) {
			Fail(c, apperr.Newf(apperr.Forbidden, "role %q may not access this resource", p.Role))
			return
		}

		c.Set(PrincipalKey, p)
		c.Request = c.Request.WithContext(identity.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

// CurrentPrincipal returns the principal attached by Auth, or nil on public routes.
func CurrentPrincipal(c *gin.Context) *identity.Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(*identity.Principal); ok {
			return p
		}
	}
	return identity.FromContext(c.Request.Context())
}
