package nodeconfig

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FREEDOM_MODE", "FREEDOM_LOCATION", "FREEDOM_KILL_SWITCH",
		"FREEDOM_THREAT_PROTECTION", "FREEDOM_DNS_PROTECTION",
		"FREEDOM_ONION_HARDENED", "FREEDOM_SPLIT_TUNNEL_APPS",
		"FREEDOM_API_PORT", "FREEDOM_PROXY_PORT", "FREEDOM_QUIC_PORT",
	} {
		os.Unsetenv(key)
	}
}

func TestDefaultMatchesDesktopAppBaseline(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ModeFull, cfg.Mode)
	assert.True(t, cfg.KillSwitch)
	assert.True(t, cfg.ThreatProtection)
	assert.True(t, cfg.DNSProtection)
	assert.Empty(t, cfg.SplitTunnelApps)
	assert.Equal(t, DefaultAPIPort, cfg.APIPort)
}

func TestFromEnvOverridesPorts(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)
	os.Setenv("FREEDOM_API_PORT", "19090")
	os.Setenv("FREEDOM_PROXY_PORT", "18080")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 19090, cfg.APIPort)
	assert.Equal(t, 18080, cfg.ProxyPort)
	assert.Equal(t, DefaultQUICPort, cfg.QUICPort)
}

func TestFromEnvRejectsInvalidMode(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)
	os.Setenv("FREEDOM_MODE", "bogus")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnvRejectsInvalidPort(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)
	os.Setenv("FREEDOM_API_PORT", "not-a-port")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnvSplitModeRequiresApps(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)
	os.Setenv("FREEDOM_MODE", "split")

	_, err := FromEnv()
	assert.Error(t, err)

	os.Setenv("FREEDOM_SPLIT_TUNNEL_APPS", "firefox;steam")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"firefox", "steam"}, cfg.SplitTunnelApps)
}
