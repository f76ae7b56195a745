package account

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("account already exists")
	ErrPersistence    = errors.New("account store failure")
)

// Store persists accounts keyed by normalized email.
//
// Create must reject an existing email at write time, independent of
// any lookup the caller did first. Update applies a Patch atomically
// with respect to other single updates; there is no multi-update
// transaction.
type Store interface {
	Get(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, a *Account) error
	Update(ctx context.Context, email string, p Patch) (*Account, error)
}

// Patch is a field-level update. Nil pointers leave the field as is.
type Patch struct {
	ProviderAccountID   *string
	ProviderDisplayName *string
	ProviderAccessToken *string
	Status              *Status
}

// TokenCheckpoint stores a long-lived token without touching status.
func TokenCheckpoint(token string) Patch {
	return Patch{ProviderAccessToken: &token}
}

// Connect records the remote profile and marks the account connected.
// The token is written again so the update alone satisfies the
// CONNECTED invariant even if the checkpoint was cleared meanwhile.
func Connect(remoteID, displayName, token string) Patch {
	status := StatusConnected
	return Patch{
		ProviderAccountID:   &remoteID,
		ProviderDisplayName: &displayName,
		ProviderAccessToken: &token,
		Status:              &status,
	}
}

// Disconnect clears every provider field.
func Disconnect() Patch {
	empty := ""
	status := StatusNotConnected
	return Patch{
		ProviderAccountID:   &empty,
		ProviderDisplayName: &empty,
		ProviderAccessToken: &empty,
		Status:              &status,
	}
}

// Apply mutates a in place.
func (p Patch) Apply(a *Account) {
	if p.ProviderAccountID != nil {
		a.ProviderAccountID = *p.ProviderAccountID
	}
	if p.ProviderDisplayName != nil {
		a.ProviderDisplayName = *p.ProviderDisplayName
	}
	if p.ProviderAccessToken != nil {
		a.ProviderAccessToken = *p.ProviderAccessToken
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
}

func (p Patch) empty() bool {
	return p.ProviderAccountID == nil &&
		p.ProviderDisplayName == nil &&
		p.ProviderAccessToken == nil &&
		p.Status == nil
}
