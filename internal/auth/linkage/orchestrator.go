package linkage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"link-service/internal/account"
	"link-service/internal/auth"
	"link-service/internal/auth/provider"
	"link-service/internal/logger"
)

var (
	ErrMissingEmail = errors.New("email is required")
	ErrMissingCode  = errors.New("authorization code is required")
)

// Stage is the position of an attempt in the callback pipeline. Each
// stage names the step that has completed.
type Stage int

const (
	StageInitiated Stage = iota
	StageCodeExchanged
	StageTokenUpgraded
	StageProfileFetched
	StageLinked
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageInitiated:
		return "INITIATED"
	case StageCodeExchanged:
		return "CODE_EXCHANGED"
	case StageTokenUpgraded:
		return "TOKEN_UPGRADED"
	case StageProfileFetched:
		return "PROFILE_FETCHED"
	case StageLinked:
		return "LINKED"
	case StageFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Attempt is one run of the pipeline for (email, code). It is never
// persisted and never retried; a new callback starts a new attempt.
type Attempt struct {
	Email string
	Code  string
	Stage Stage
	Err   error

	shortToken string
	longToken  string
	identity   auth.Identity
	account    *account.Account
}

func (a Attempt) Done() bool {
	return a.Stage == StageLinked || a.Stage == StageFailed
}

// Account is the stored account as of the last write or read the
// attempt made.
func (a Attempt) Account() *account.Account {
	return a.account
}

// AttemptError records the stage an attempt was in when it failed.
type AttemptError struct {
	Email string
	Stage Stage
	Err   error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("linkage failed after %s: %v", e.Stage, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

type Config struct {
	// CallbackBaseURL is joined with the escaped email to form the
	// OAuth redirect target.
	CallbackBaseURL string
	Scopes          []string
}

// Orchestrator drives the code → short token → long token → profile
// pipeline and the account writes it implies.
//
// The long-lived token is written as soon as it is obtained; the
// account only turns CONNECTED in the final write together with the
// profile fields. Concurrent attempts for one email are not excluded
// and the store's last write wins.
type Orchestrator struct {
	cfg      Config
	store    account.Store
	provider provider.Client
}

func New(cfg Config, store account.Store, client provider.Client) (*Orchestrator, error) {
	cfg.CallbackBaseURL = strings.TrimRight(strings.TrimSpace(cfg.CallbackBaseURL), "/")
	if cfg.CallbackBaseURL == "" {
		return nil, errors.New("linkage: callback base url is required")
	}
	if store == nil || client == nil {
		return nil, errors.New("linkage: store and provider client are required")
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"email"}
	}

	return &Orchestrator{
		cfg:      cfg,
		store:    store,
		provider: client,
	}, nil
}

// RedirectTarget is the callback URL for email. The same value must be
// used for the authorization URL and the code exchange.
func (o *Orchestrator) RedirectTarget(email string) string {
	return o.cfg.CallbackBaseURL + "/" + url.PathEscape(account.NormalizeEmail(email))
}

// LoginURL returns the provider authorization URL for email. It has no
// side effects.
func (o *Orchestrator) LoginURL(email string) (string, error) {
	if account.NormalizeEmail(email) == "" {
		return "", ErrMissingEmail
	}
	return o.provider.BuildAuthorizationURL(o.cfg.Scopes, o.RedirectTarget(email))
}

// Begin creates a fresh attempt.
func (o *Orchestrator) Begin(email, code string) Attempt {
	return Attempt{
		Email: account.NormalizeEmail(email),
		Code:  strings.TrimSpace(code),
		Stage: StageInitiated,
	}
}

// Step runs exactly one transition. Finished attempts are returned as is.
func (o *Orchestrator) Step(ctx context.Context, a Attempt) Attempt {
	var next Attempt
	switch a.Stage {
	case StageInitiated:
		next = o.exchangeCode(ctx, a)
	case StageCodeExchanged:
		next = o.upgradeToken(ctx, a)
	case StageTokenUpgraded:
		next = o.fetchProfile(ctx, a)
	case StageProfileFetched:
		next = o.connect(ctx, a)
	default:
		return a
	}

	if next.Stage != StageFailed {
		logger.Debug("linkage stage completed", map[string]any{
			"email": a.Email,
			"stage": next.Stage.String(),
		})
	}
	return next
}

// Link runs a full attempt and returns the connected account.
func (o *Orchestrator) Link(ctx context.Context, email, code string) (*account.Account, error) {
	a := o.Begin(email, code)
	for !a.Done() {
		a = o.Step(ctx, a)
	}

	if a.Stage == StageFailed {
		logger.Warn("provider linkage failed", map[string]any{
			"email": a.Email,
			"error": a.Err.Error(),
		})
		return nil, a.Err
	}

	logger.Info("provider account linked", map[string]any{
		"email":               a.Email,
		"provider":            a.identity.Provider,
		"provider_account_id": a.identity.ProviderUserID,
	})
	return a.Account(), nil
}

// Unlink clears the provider fields in a single update. Unlinking an
// account that was never connected succeeds.
func (o *Orchestrator) Unlink(ctx context.Context, email string) (*account.Account, error) {
	email = account.NormalizeEmail(email)
	if email == "" {
		return nil, ErrMissingEmail
	}

	acct, err := o.store.Update(ctx, email, account.Disconnect())
	if err != nil {
		return nil, err
	}

	logger.Info("provider account unlinked", map[string]any{
		"email": email,
	})
	return acct, nil
}

// exchangeCode checks the account before any provider call so unknown
// emails never reach the provider.
func (o *Orchestrator) exchangeCode(ctx context.Context, a Attempt) Attempt {
	if a.Email == "" {
		return fail(a, ErrMissingEmail)
	}

	acct, err := o.store.Get(ctx, a.Email)
	if err != nil {
		return fail(a, err)
	}
	a.account = acct

	if a.Code == "" {
		return fail(a, ErrMissingCode)
	}

	token, err := o.provider.ExchangeCodeForToken(ctx, a.Code, o.RedirectTarget(a.Email))
	if err != nil {
		return fail(a, err)
	}

	a.shortToken = token
	a.Stage = StageCodeExchanged
	return a
}

// upgradeToken checkpoints the long-lived token without changing status.
func (o *Orchestrator) upgradeToken(ctx context.Context, a Attempt) Attempt {
	token, err := o.provider.UpgradeToLongLivedToken(ctx, a.shortToken)
	if err != nil {
		return fail(a, err)
	}

	acct, err := o.store.Update(ctx, a.Email, account.TokenCheckpoint(token))
	if err != nil {
		return fail(a, err)
	}

	a.longToken = token
	a.account = acct
	a.Stage = StageTokenUpgraded
	return a
}

func (o *Orchestrator) fetchProfile(ctx context.Context, a Attempt) Attempt {
	identity, err := o.provider.FetchProfile(ctx, a.longToken)
	if err != nil {
		return fail(a, err)
	}

	a.identity = identity
	a.Stage = StageProfileFetched
	return a
}

// connect is the only transition that sets CONNECTED.
func (o *Orchestrator) connect(ctx context.Context, a Attempt) Attempt {
	acct, err := o.store.Update(ctx, a.Email, account.Connect(a.identity.ProviderUserID, a.identity.DisplayName, a.longToken))
	if err != nil {
		return fail(a, err)
	}

	a.account = acct
	a.Stage = StageLinked
	return a
}

func fail(a Attempt, err error) Attempt {
	a.Err = &AttemptError{
		Email: a.Email,
		Stage: a.Stage,
		Err:   err,
	}
	a.Stage = StageFailed
	return a
}
