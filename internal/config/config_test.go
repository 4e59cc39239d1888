package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-share-portal/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	c := config.New()

	require.Equal(t, ":3000", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.False(t, c.IsProduction())
	require.Equal(t, "https://accounts.zoho.com", c.GetZohoOAuthURL())
	require.Equal(t, "https://www.zohoapis.com", c.GetZohoAPIURL())
	require.Equal(t, "demoUser", c.GetPortalUserID())
	require.Equal(t, 30*24*time.Hour, c.GetLinkTTL())
	require.Equal(t, config.StoreMemory, c.GetTokenStore())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("*"))
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("PORT", ":9000")
	t.Setenv("ENV", "production")
	t.Setenv("ZOHO_OAUTH_DOMAIN", "http://127.0.0.1:8089/")
	t.Setenv("BASE_URL", "https://portal.example.com/")
	t.Setenv("PUBLIC_LINK_TTL", "2h")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("SHIPPER_STREET", "1 MAIN|SUITE 2")

	c := config.New()

	require.Equal(t, ":9000", c.GetPort())
	require.True(t, c.IsProduction())
	require.Equal(t, "http://127.0.0.1:8089", c.GetZohoOAuthURL())
	require.Equal(t, "https://portal.example.com", c.GetBaseURL())
	require.Equal(t, 2*time.Hour, c.GetLinkTTL())
	require.Equal(t, "cache:6380", c.GetRedisAddr())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://b.example.com"))
	require.False(t, c.GetAllowedOrigins().IsAllowedOrigin("*"))
	require.Equal(t, []string{"1 MAIN", "SUITE 2"}, c.GetShipper().StreetLines)
}
