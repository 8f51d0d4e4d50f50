package idpolicy

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSameSite(t *testing.T) {
	tests := []struct {
		in   string
		want http.SameSite
	}{
		{"STRICT", http.SameSiteStrictMode},
		{"strict", http.SameSiteStrictMode},
		{" Strict ", http.SameSiteStrictMode},
		{"NONE", http.SameSiteNoneMode},
		{"none", http.SameSiteNoneMode},
		{"LAX", http.SameSiteLaxMode},
		{"", http.SameSiteLaxMode},
		{"bogus", http.SameSiteLaxMode},
	}
	for _, tc := range tests {
		if got := ParseSameSite(tc.in); got != tc.want {
			t.Errorf("ParseSameSite(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SHELF_SESSION_KEY", testKey)
	t.Setenv("SHELF_SESSION_NAME", "sid")
	t.Setenv("SHELF_SESSION_TIMEOUT", "45")
	t.Setenv("SHELF_SESSION_SECURE", "false")
	t.Setenv("SHELF_SESSION_SAMESITE", "none")
	t.Setenv("SHELF_IDENTITY_POLICY", "session")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, Config{
		SessionKey:     testKey,
		SessionName:    "sid",
		TimeoutMinutes: 45,
		Secure:         false,
		SameSite:       "none",
		Variant:        VariantSession,
	}, cfg)
	assert.Equal(t, 45*time.Minute, cfg.TTL())
	assert.Equal(t, 2700, cfg.MaxAge())
}

func TestLoadConfigFromEnv_MissingKey(t *testing.T) {
	t.Setenv("SHELF_SESSION_KEY", "")
	_, err := LoadConfigFromEnv()
	assert.ErrorIs(t, err, ErrConfig)
}

func TestDeriveKeys_PurposeSeparated(t *testing.T) {
	a, err := deriveKeys(testKey, "identity-cookie")
	require.NoError(t, err)
	b, err := deriveKeys(testKey, "session-id-cookie")
	require.NoError(t, err)
	again, err := deriveKeys(testKey, "identity-cookie")
	require.NoError(t, err)

	assert.Len(t, a.hash, 64)
	assert.Len(t, a.block, 32)
	assert.Equal(t, a, again)
	assert.NotEqual(t, a.hash, b.hash)
	assert.NotEqual(t, a.block, b.block)
}
