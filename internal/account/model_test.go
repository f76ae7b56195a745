package account

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_Consistent(t *testing.T) {
	tests := []struct {
		name string
		acct Account
		want bool
	}{
		{"not connected, empty", Account{Status: StatusNotConnected}, true},
		{"not connected, token checkpoint", Account{Status: StatusNotConnected, ProviderAccessToken: "t"}, true},
		{"connected, complete", Account{
			Status:              StatusConnected,
			ProviderAccountID:   "1",
			ProviderDisplayName: "n",
			ProviderAccessToken: "t",
		}, true},
		{"connected, missing token", Account{
			Status:              StatusConnected,
			ProviderAccountID:   "1",
			ProviderDisplayName: "n",
		}, false},
		{"unknown status", Account{Status: "connected"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.acct.Consistent())
		})
	}
}

func TestPatch_ApplyLeavesUnsetFields(t *testing.T) {
	a := Account{
		ProviderAccountID:   "old-id",
		ProviderDisplayName: "old-name",
		Status:              StatusConnected,
	}

	TokenCheckpoint("new-token").Apply(&a)

	assert.Equal(t, "old-id", a.ProviderAccountID)
	assert.Equal(t, "old-name", a.ProviderDisplayName)
	assert.Equal(t, "new-token", a.ProviderAccessToken)
	assert.Equal(t, StatusConnected, a.Status)
}

func TestPublic_HidesDigestAndRendersNulls(t *testing.T) {
	a := Account{
		ID:             "id-1",
		Email:          "a@x.com",
		DisplayName:    "Ada",
		PasswordDigest: "secret-digest",
		Status:         StatusNotConnected,
	}

	raw, err := json.Marshal(a.Public())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.NotContains(t, string(raw), "secret-digest")
	assert.Nil(t, decoded["providerAccountId"])
	assert.Nil(t, decoded["providerDisplayName"])
	assert.Nil(t, decoded["providerAccessToken"])
	assert.Equal(t, "NOT_CONNECTED", decoded["status"])
	assert.Contains(t, decoded, "providerAccessToken")
}
