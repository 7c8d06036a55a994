package middleware

import (
	"context"
	"errors"

	"inkpost/internal/apperr"
	"inkpost/internal/identity"
	"inkpost/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const SessionUserKey = "user_id"

// Resolver turns request credentials into a principal. It returns (nil, nil)
// when the request carries no usable identity.
type Resolver interface {
	Resolve(c *gin.Context) (*identity.Principal, error)
}

type ResolverFunc func(c *gin.Context) (*identity.Principal, error)

func (f ResolverFunc) Resolve(c *gin.Context) (*identity.Principal, error) { return f(c) }

// UserFinder loads users for resolvers.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

func principalFor(ctx context.Context, users UserFinder, id string) (*identity.Principal, error) {
	user, err := users.FindByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, nil
	}
	return identity.FromUser(user), nil
}

// SessionResolver reads the user id stored in the cookie session at login.
type SessionResolver struct {
	Users UserFinder
}

func (r SessionResolver) Resolve(c *gin.Context) (*identity.Principal, error) {
	userID, ok := sessions.Default(c).Get(SessionUserKey).(string)
	if !ok || userID == "" {
		return nil, nil
	}
	return principalFor(c.Request.Context(), r.Users, userID)
}

// TokenResolver reads an HS256 bearer token whose subject is the user id.
type TokenResolver struct {
	Users  UserFinder
	Secret []byte
}

func (r TokenResolver) Resolve(c *gin.Context) (*identity.Principal, error) {
	raw, err := bearerToken(c.Request)
	if err != nil {
		return nil, nil
	}
	subject, err := ParseTokenSubject(raw, r.Secret)
	if err != nil {
		return nil, nil
	}
	return principalFor(c.Request.Context(), r.Users, subject)
}

// ChainResolver returns the first principal any resolver yields.
type ChainResolver []Resolver

func (chain ChainResolver) Resolve(c *gin.Context) (*identity.Principal, error) {
	var errs []error
	for _, r := range chain {
		p, err := r.Resolve(c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if p != nil {
			return p, nil
		}
	}
	return nil, errors.Join(errs...)
}

// LoadPrincipal attaches the caller to public routes when one resolves,
// without rejecting anonymous requests.
func LoadPrincipal(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, err := resolver.Resolve(c); err == nil && p != nil {
			c.Set(PrincipalKey, p)
			c.Request = c.Request.WithContext(identity.WithPrincipal(c.Request.Context(), p))
		}
		c.Next()
	}
}
