// Package identity carries the authenticated caller through request contexts.
package identity

import (
	"context"

	"inkpost/internal/models"
)

// Principal is the verified caller as resolved from request credentials.
type Principal struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
}

func FromUser(u *models.User) *Principal {
	return &Principal{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
	}
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// CanModify reports whether p may mutate an entity owned by authorID.
func (p Principal) CanModify(authorID string) bool {
	return p.IsAdmin() || p.ID == authorID
}

type contextKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal stored in ctx, or nil.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(contextKey{}).(*Principal)
	return p
}
