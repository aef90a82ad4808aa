package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the identity layer depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// Identity is the resolved local identity attached to a request.
type Identity struct {
	UserID  int64
	Subject string
	Name    string
	Email   string
}

// IdentityResolver maps a raw bearer credential to a local identity.
// A nil identity with nil error means the request is unauthenticated.
type IdentityResolver interface {
	Resolve(ctx context.Context, rawToken string) (*Identity, error)
}

// tokenCookie carries the credential when no Authorization header is present
// (legacy browser clients).
const tokenCookie = "auth_token"

// BearerToken extracts the raw credential from the Authorization header or
// the cookie fallback. Returns "" when neither is present.
func BearerToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n == 1 {
			return token
		}
	}
	if v, err := c.Cookie(tokenCookie); err == nil {
		return v
	}
	return ""
}

// RequireIdentity returns a Gin middleware that resolves the caller's local
// identity and rejects the request with 401 when none can be established.
func RequireIdentity(res IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := res.Resolve(c.Request.Context(), BearerToken(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "identity resolution failed", "detail": err.Error()})
			return
		}
		if id == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set("identity", id)
		c.Next()
	}
}

// IdentityFrom returns the identity set by RequireIdentity, when present.
func IdentityFrom(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get("identity")
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok
}
