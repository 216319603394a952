package security

import (
	"context"
	"slices"

	"github.com/google/uuid"
)

// AuthenticatedUser is the caller identity resolved from an access token.
type AuthenticatedUser struct {
	UserID uuid.UUID
	Roles  []string
}

func (u *AuthenticatedUser) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

type userContextKey struct{}

func WithUser(ctx context.Context, u *AuthenticatedUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// UserFromContext returns the caller stored by the auth middleware, if any.
func UserFromContext(ctx context.Context) (*AuthenticatedUser, bool) {
	u, ok := ctx.Value(userContextKey{}).(*AuthenticatedUser)
	return u, ok && u != nil
}
