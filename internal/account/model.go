package account

import (
	"strings"
	"time"
)

// Status is the provider connection state of an account.
type Status string

const (
	StatusNotConnected Status = "NOT_CONNECTED"
	StatusConnected    Status = "CONNECTED"
)

// Account is the local identity record. Provider fields use the empty
// string for "not set"; stores persist them as NULL.
type Account struct {
	ID             string
	Email          string
	DisplayName    string
	PasswordDigest string

	ProviderAccountID   string
	ProviderDisplayName string
	ProviderAccessToken string
	Status              Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Consistent reports whether the connection status agrees with the
// provider fields. A CONNECTED account must carry all of them.
func (a *Account) Consistent() bool {
	switch a.Status {
	case StatusConnected:
		return a.ProviderAccountID != "" &&
			a.ProviderDisplayName != "" &&
			a.ProviderAccessToken != ""
	case StatusNotConnected:
		return true
	default:
		return false
	}
}

// Public is the account as exposed over the API. The password digest
// is never part of it.
type Public struct {
	ID                  string  `json:"id"`
	Email               string  `json:"email"`
	Name                string  `json:"name"`
	ProviderAccountID   *string `json:"providerAccountId"`
	ProviderDisplayName *string `json:"providerDisplayName"`
	ProviderAccessToken *string `json:"providerAccessToken"`
	Status              Status  `json:"status"`
}

func (a *Account) Public() Public {
	return Public{
		ID:                  a.ID,
		Email:               a.Email,
		Name:                a.DisplayName,
		ProviderAccountID:   nullable(a.ProviderAccountID),
		ProviderDisplayName: nullable(a.ProviderDisplayName),
		ProviderAccessToken: nullable(a.ProviderAccessToken),
		Status:              a.Status,
	}
}

// NormalizeEmail is the canonical form used as the store key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
