package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"link-service/internal/auth/credentials"
	"link-service/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	issuer, err := credentials.NewJWTIssuer(credentials.JWTConfig{Secret: "s3cret", TTL: time.Hour})
	require.NoError(t, err)
	token, _, err := issuer.Issue(credentials.Claims{Email: "a@x.com", AccountID: "acc-1"})
	require.NoError(t, err)

	r := gin.New()
	r.Use(Cors("http://localhost:3000"))
	r.GET("/me", GinRequireAuth(NewAuthMiddleware(issuer)), func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": claims.Email})
	})
	return r, token
}

func TestRequireAuth_Cookie(t *testing.T) {
	r, token := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email":"a@x.com"}`, rec.Body.String())
}

func TestRequireAuth_Bearer(t *testing.T) {
	r, token := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_Rejects(t *testing.T) {
	r, _ := setupRouter(t)

	tests := []struct {
		name  string
		setup func(*http.Request)
	}{
		{"no token", func(*http.Request) {}},
		{"garbage cookie", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "not-a-jwt"})
		}},
		{"wrong scheme", func(req *http.Request) {
			req.Header.Set("Authorization", "Basic abc")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestCors_AllowsFrontend(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/me", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
