package credentials

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewJWTIssuer(JWTConfig{Secret: "s3cret", Issuer: "link-service", TTL: time.Hour})
	require.NoError(t, err)

	token, expiresAt, err := issuer.Issue(Claims{Email: "a@x.com", AccountID: "acc-1"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "acc-1", claims.AccountID)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTIssuer_NoTTLMeansNoExpiry(t *testing.T) {
	issuer, err := NewJWTIssuer(JWTConfig{Secret: "s3cret"})
	require.NoError(t, err)

	token, expiresAt, err := issuer.Issue(Claims{Email: "a@x.com", AccountID: "acc-1"})
	require.NoError(t, err)
	assert.True(t, expiresAt.IsZero())

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestJWTIssuer_RejectsForeignSignature(t *testing.T) {
	a, err := NewJWTIssuer(JWTConfig{Secret: "one"})
	require.NoError(t, err)
	b, err := NewJWTIssuer(JWTConfig{Secret: "two"})
	require.NoError(t, err)

	token, _, err := a.Issue(Claims{Email: "a@x.com", AccountID: "acc-1"})
	require.NoError(t, err)

	_, err = b.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTIssuer_RejectsExpired(t *testing.T) {
	issuer, err := NewJWTIssuer(JWTConfig{Secret: "s3cret", TTL: time.Minute})
	require.NoError(t, err)

	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := issuer.Issue(Claims{Email: "a@x.com", AccountID: "acc-1"})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTIssuer_RequiresIdentity(t *testing.T) {
	issuer, err := NewJWTIssuer(JWTConfig{Secret: "s3cret"})
	require.NoError(t, err)

	_, _, err = issuer.Issue(Claims{Email: "a@x.com"})
	assert.Error(t, err)

	_, err = NewJWTIssuer(JWTConfig{})
	assert.Error(t, err)
}
