package httpapi

import (
	"context"

	"fypms/internal/model"
)

// AuthContext is the identity the authorization gate resolved for the current
// request. It never carries the password hash or the stored refresh token.
type AuthContext struct {
	ID         string
	Name       string
	Email      string
	Role       model.Role
	Department string
	RollNumber string
	AddedBy    string
}

type authContextKey struct{}

func withAuthContext(ctx context.Context, actx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, actx)
}

func authFromContext(ctx context.Context) *AuthContext {
	value := ctx.Value(authContextKey{})
	actx, _ := value.(*AuthContext)
	return actx
}
