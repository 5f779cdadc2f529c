package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

type contextKey string

const (
	ProfileIDKey contextKey = "profile_id"
	RolesKey     contextKey = "roles"
)

// TokenValidator is satisfied by TokenManager.
type TokenValidator interface {
	Validate(tokenString string) (*CustomClaims, error)
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

// WithClaims injects the caller identity for the service layer.
func WithClaims(ctx context.Context, claims *CustomClaims) context.Context {
	ctx = context.WithValue(ctx, ProfileIDKey, claims.ProfileID)
	return context.WithValue(ctx, RolesKey, claims.Roles)
}

func ProfileIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ProfileIDKey).(string)
	return id, ok && id != ""
}

// RequireAuth rejects requests without a valid token. onReject writes the
// error response so this package stays unaware of the HTTP envelope.
func RequireAuth(tokens TokenValidator, onReject func(c *gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			onReject(c)
			return
		}
		claims, err := tokens.Validate(tokenStr)
		if err != nil {
			onReject(c)
			return
		}
		c.Set(string(ProfileIDKey), claims.ProfileID)
		c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}
