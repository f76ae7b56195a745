package auth

// Identity is the remote profile returned by the provider for a token.
// It contains facts only; linking decisions are made by the caller.
type Identity struct {
	Provider       string // e.g. "facebook"
	ProviderUserID string // provider-scoped user id
	DisplayName    string // public profile or page name
}
