package provider

import (
	"context"
	"errors"

	"link-service/internal/auth"
)

var (
	// ErrProviderRejected covers invalid, expired or reused codes,
	// rejected tokens and provider-side errors.
	ErrProviderRejected = errors.New("provider rejected the request")
	// ErrTokenInvalid means the provider no longer accepts the token.
	ErrTokenInvalid = errors.New("provider token is invalid")
	// ErrProviderUnavailable is a transport failure; the provider gave
	// no answer.
	ErrProviderUnavailable = errors.New("provider unavailable")

	ErrMissingScopes   = errors.New("at least one scope is required")
	ErrMissingRedirect = errors.New("redirect target is required")
)

// Client is the contract for the OAuth provider the accounts link to.
// Implementations talk to the provider only and must not touch
// account state.
type Client interface {
	// BuildAuthorizationURL is deterministic for the same inputs.
	BuildAuthorizationURL(scopes []string, redirectTarget string) (string, error)

	// ExchangeCodeForToken trades an authorization code for a
	// short-lived token. redirectTarget must match the one used to
	// build the authorization URL.
	ExchangeCodeForToken(ctx context.Context, code string, redirectTarget string) (string, error)

	// UpgradeToLongLivedToken is idempotent for the caller.
	UpgradeToLongLivedToken(ctx context.Context, shortLivedToken string) (string, error)

	FetchProfile(ctx context.Context, token string) (auth.Identity, error)
}
