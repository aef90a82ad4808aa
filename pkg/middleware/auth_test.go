package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeResolver implements IdentityResolver
type fakeResolver struct{}

func (f *fakeResolver) Resolve(ctx context.Context, raw string) (*Identity, error) {
	switch raw {
	case "goodtoken":
		return &Identity{UserID: 42, Subject: "user1", Email: "test@example.com"}, nil
	case "boom":
		return nil, fmt.Errorf("datastore down")
	default:
		return nil, nil
	}
}

func TestRequireIdentity_NoCredential(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rw := httptest.NewRecorder()

	g.GET("/", RequireIdentity(&fakeResolver{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestRequireIdentity_UnresolvableToken(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer badtoken")
	rw := httptest.NewRecorder()

	g.GET("/", RequireIdentity(&fakeResolver{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestRequireIdentity_ValidToken(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer goodtoken")
	rw := httptest.NewRecorder()

	g.GET("/", RequireIdentity(&fakeResolver{}), func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		require.True(t, ok)
		require.Equal(t, int64(42), id.UserID)
		c.Status(http.StatusOK)
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusOK, rw.Code)
}

func TestRequireIdentity_CookieFallback(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookie, Value: "goodtoken"})
	rw := httptest.NewRecorder()

	g.GET("/", RequireIdentity(&fakeResolver{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusOK, rw.Code)
}

func TestRequireIdentity_ResolverError(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer boom")
	rw := httptest.NewRecorder()

	g.GET("/", RequireIdentity(&fakeResolver{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusInternalServerError, rw.Code)
}

func TestBearerToken_HeaderPrecedence(t *testing.T) {
	g := gin.New()
	var got string
	g.GET("/", func(c *gin.Context) {
		got = BearerToken(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer headertoken")
	req.AddCookie(&http.Cookie{Name: tokenCookie, Value: "cookietoken"})
	g.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "headertoken", got)
}
