package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchFields(t *testing.T) {
	tests := []struct {
		name    string
		patch   Patch
		wantSet map[string]any
		wantDel []string
	}{
		{
			name:    "token checkpoint",
			patch:   TokenCheckpoint("long-token"),
			wantSet: map[string]any{"provider_access_token": "long-token"},
		},
		{
			name:  "connect",
			patch: Connect("fb-1", "Ada Page", "long-token"),
			wantSet: map[string]any{
				"provider_account_id":   "fb-1",
				"provider_display_name": "Ada Page",
				"provider_access_token": "long-token",
				"status":                string(StatusConnected),
			},
		},
		{
			name:    "disconnect",
			patch:   Disconnect(),
			wantSet: map[string]any{"status": string(StatusNotConnected)},
			wantDel: []string{"provider_account_id", "provider_display_name", "provider_access_token"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, del := patchFields(tt.patch)
			assert.Equal(t, tt.wantSet, set)
			assert.ElementsMatch(t, tt.wantDel, del)
		})
	}
}

func TestHashRoundTrip_OmitsEmptyProviderFields(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	a := &Account{
		ID:             "acc-1",
		Email:          "a@x.com",
		DisplayName:    "Ada",
		PasswordDigest: "digest",
		Status:         StatusNotConnected,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	h := toHash(a)
	assert.NotContains(t, h, "provider_access_token")

	strs := make(map[string]string, len(h))
	for k, v := range h {
		strs[k] = v.(string)
	}
	got, err := fromHash(strs)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}
