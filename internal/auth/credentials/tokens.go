package credentials

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid session token")

// Claims identify the account a session token was issued for.
type Claims struct {
	Email     string `json:"email"`
	AccountID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies session tokens. Sessions are stateless:
// nothing is recorded server-side.
type TokenIssuer interface {
	Issue(claims Claims) (token string, expiresAt time.Time, err error)
	Parse(token string) (*Claims, error)
}

type JWTConfig struct {
	Secret string
	Issuer string
	// TTL of zero issues tokens without an exp claim.
	TTL time.Duration
}

type JWTIssuer struct {
	cfg JWTConfig
	now func() time.Time
}

func NewJWTIssuer(cfg JWTConfig) (*JWTIssuer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &JWTIssuer{cfg: cfg, now: time.Now}, nil
}

func (j *JWTIssuer) Issue(claims Claims) (string, time.Time, error) {
	if claims.Email == "" || claims.AccountID == "" {
		return "", time.Time{}, errors.New("session claims require email and account id")
	}

	now := j.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		Issuer:   j.cfg.Issuer,
		Subject:  claims.AccountID,
		IssuedAt: jwt.NewNumericDate(now),
	}

	var expiresAt time.Time
	if j.cfg.TTL > 0 {
		expiresAt = now.Add(j.cfg.TTL)
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

func (j *JWTIssuer) Parse(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
	}
	if j.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.cfg.Issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(j.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Email == "" || claims.AccountID == "" {
		return nil, fmt.Errorf("%w: missing identity claims", ErrInvalidToken)
	}
	return &claims, nil
}
