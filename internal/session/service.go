package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"link-service/internal/account"
	"link-service/internal/auth/credentials"
	"link-service/internal/logger"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("email and password are required")

type Config struct {
	Cookie CookieOptions
}

// LoginResult is what a successful login hands back to the caller.
type LoginResult struct {
	Account   *account.Account
	Token     string
	ExpiresAt time.Time
}

// Service registers local accounts and opens sessions for them.
// Sessions are signed tokens; nothing about them is stored.
type Service struct {
	cfg    Config
	store  account.Store
	hasher credentials.Hasher
	tokens credentials.TokenIssuer
}

func New(cfg Config, store account.Store, hasher credentials.Hasher, tokens credentials.TokenIssuer) *Service {
	return &Service{
		cfg:    cfg,
		store:  store,
		hasher: hasher,
		tokens: tokens,
	}
}

func (s *Service) Signup(
	ctx context.Context,
	email string,
	displayName string,
	password string,
) (*account.Account, error) {

	email = account.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	// 1. Reject known emails early
	_, err := s.store.Get(ctx, email)
	switch {
	case err == nil:
		return nil, account.ErrDuplicateEmail
	case !errors.Is(err, account.ErrNotFound):
		return nil, err
	}

	// 2. Hash password
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// 3. Insert; the store rejects a concurrent duplicate
	a := &account.Account{
		ID:             uuid.NewString(),
		Email:          email,
		DisplayName:    strings.TrimSpace(displayName),
		PasswordDigest: digest,
		Status:         account.StatusNotConnected,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}

	logger.Info("account created", map[string]any{
		"email":      email,
		"account_id": a.ID,
	})
	return a, nil
}

func (s *Service) Login(
	ctx context.Context,
	email string,
	password string,
) (*LoginResult, error) {

	// 1. Find account
	a, err := s.store.Get(ctx, email)
	if err != nil {
		return nil, err
	}

	// 2. Verify password
	if !s.hasher.Verify(password, a.PasswordDigest) {
		logger.Warn("login rejected", map[string]any{
			"email": a.Email,
		})
		return nil, credentials.ErrBadCredentials
	}

	// 3. Issue session token
	token, expiresAt, err := s.tokens.Issue(credentials.Claims{
		Email:     a.Email,
		AccountID: a.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	logger.Info("login succeeded", map[string]any{
		"email":      a.Email,
		"account_id": a.ID,
	})
	return &LoginResult{
		Account:   a,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Lookup returns the account a verified session belongs to. A session
// that outlived its account, or whose email was reassigned, is reported
// as ErrNotFound.
func (s *Service) Lookup(ctx context.Context, claims *credentials.Claims) (*account.Account, error) {
	if claims == nil || claims.Email == "" {
		return nil, account.ErrNotFound
	}

	a, err := s.store.Get(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	if claims.AccountID != "" && claims.AccountID != a.ID {
		return nil, account.ErrNotFound
	}
	return a, nil
}

// Verify checks a raw session token.
func (s *Service) Verify(token string) (*credentials.Claims, error) {
	return s.tokens.Parse(token)
}

// SetCookie issues the login result's token as the session cookie.
func (s *Service) SetCookie(w http.ResponseWriter, res *LoginResult) {
	SetCookie(w, res.Token, res.ExpiresAt, s.cfg.Cookie)
}

func (s *Service) ClearCookie(w http.ResponseWriter) {
	ClearCookie(w, s.cfg.Cookie)
}
