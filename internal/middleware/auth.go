package middleware

import (
	"context"
	"net/http"
	"strings"

	"link-service/internal/auth/credentials"
	"link-service/internal/session"
)

// unexported, collision-proof context key
type claimsContextKeyType struct{}

var claimsKey = claimsContextKeyType{}

// ClaimsFromContext extracts the verified session claims from context.
func ClaimsFromContext(ctx context.Context) (*credentials.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*credentials.Claims)
	return claims, ok
}

// WithClaims attaches claims to ctx.
func WithClaims(ctx context.Context, claims *credentials.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// TokenParser verifies a raw session token.
type TokenParser interface {
	Parse(token string) (*credentials.Claims, error)
}

type AuthMiddleware struct {
	Tokens TokenParser
}

func NewAuthMiddleware(tokens TokenParser) *AuthMiddleware {
	return &AuthMiddleware{Tokens: tokens}
}

func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Read token from cookie or bearer header
		token := tokenFromRequest(r)
		if token == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// 2. Verify signature and expiry
		claims, err := a.Tokens.Parse(token)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// 3. Continue with claims attached
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
