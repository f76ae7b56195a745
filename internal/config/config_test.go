package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("APP_ID", "app-123")
	t.Setenv("APP_SECRET", "secret")
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("DATABASE_DSN", "postgres://localhost/link?sslmode=disable")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "v17.0", cfg.GraphVersion)
	assert.Equal(t, []string{"email"}, cfg.ProviderScopes)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, StorePostgres, cfg.AccountStore)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ACCOUNT_STORE", "Redis")
	t.Setenv("PROVIDER_SCOPES", "email,pages_show_list")
	t.Setenv("CALLBACK_BASE_URL", "https://api.example.com/provider/callback/")
	t.Setenv("SESSION_TTL", "0s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreRedis, cfg.AccountStore)
	assert.Equal(t, []string{"email", "pages_show_list"}, cfg.ProviderScopes)
	assert.Equal(t, "https://api.example.com/provider/callback", cfg.CallbackBaseURL)
	assert.Zero(t, cfg.SessionTTL)
}

func TestValidate_MissingSecrets(t *testing.T) {
	cfg := Config{AccountStore: StoreMemory, CallbackBaseURL: "http://localhost/cb"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_ID")
	assert.Contains(t, err.Error(), "APP_SECRET")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate_StoreSelection(t *testing.T) {
	base := Config{
		AppID:           "id",
		AppSecret:       "secret",
		JWTSecret:       "jwt",
		CallbackBaseURL: "http://localhost/cb",
		FrontendURL:     "http://localhost:3000",
	}

	pg := base
	pg.AccountStore = StorePostgres
	assert.ErrorContains(t, pg.Validate(), "DATABASE_DSN")

	mem := base
	mem.AccountStore = StoreMemory
	assert.NoError(t, mem.Validate())

	unknown := base
	unknown.AccountStore = "mongo"
	assert.ErrorContains(t, unknown.Validate(), "unknown ACCOUNT_STORE")
}

func TestValidate_RequiresFrontendURL(t *testing.T) {
	cfg := Config{
		AppID:           "id",
		AppSecret:       "secret",
		JWTSecret:       "jwt",
		CallbackBaseURL: "http://localhost/cb",
		AccountStore:    StoreMemory,
	}
	assert.ErrorContains(t, cfg.Validate(), "FRONTEND_URL")

	cfg.FrontendURL = "http://localhost:3000"
	assert.NoError(t, cfg.Validate())
}
