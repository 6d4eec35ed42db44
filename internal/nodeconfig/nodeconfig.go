// Package nodeconfig derives the node's runtime configuration from
// environment variables, mirroring the desktop app's settings surface
// (original_source/app/src-tauri/src/main.rs's AppSettings) plus the
// port-override supplement from SPEC_FULL.md §4.8. Grounded on the
// teacher's config.go/env.go flag-or-env-var precedence and defaultConfig().
package nodeconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Mode selects how much traffic routes through the overlay.
type Mode string

const (
	ModeFull  Mode = "full"
	ModeApp   Mode = "app"
	ModeSplit Mode = "split"
)

// Default ports, overridable via FREEDOM_API_PORT / FREEDOM_PROXY_PORT /
// FREEDOM_QUIC_PORT per SPEC_FULL.md §4.8.
const (
	DefaultAPIPort   = 9090
	DefaultProxyPort = 8080
	DefaultQUICPort  = 5000
)

// Config is the node's full runtime configuration.
type Config struct {
	Mode             Mode
	Location         string
	KillSwitch       bool
	ThreatProtection bool
	DNSProtection    bool
	SplitTunnelApps  []string

	APIPort   int
	ProxyPort int
	QUICPort  int

	HardenedOnion bool
}

// Default returns the configuration baseline matching the desktop app's
// AppSettings::default(): full mode, kill switch and both protections on,
// no split-tunnel apps.
func Default() Config {
	return Config{
		Mode:             ModeFull,
		Location:         "fastest",
		KillSwitch:       true,
		ThreatProtection: true,
		DNSProtection:    true,
		SplitTunnelApps:  nil,
		APIPort:          DefaultAPIPort,
		ProxyPort:        DefaultProxyPort,
		QUICPort:         DefaultQUICPort,
		HardenedOnion:    false,
	}
}

// FromEnv starts from Default and overlays FREEDOM_* environment variables,
// returning a validation error (spec.md §7's "Config" error kind) if a set
// variable is malformed.
func FromEnv() (Config, error) {
	cfg := Default()

	if v := strings.TrimSpace(os.Getenv("FREEDOM_MODE")); v != "" {
		switch Mode(v) {
		case ModeFull, ModeApp, ModeSplit:
			cfg.Mode = Mode(v)
		default:
			return Config{}, fmt.Errorf("nodeconfig: invalid FREEDOM_MODE %q", v)
		}
	}

	if v := strings.TrimSpace(os.Getenv("FREEDOM_LOCATION")); v != "" {
		cfg.Location = v
	}

	if v, ok, err := boolEnv("FREEDOM_KILL_SWITCH"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.KillSwitch = v
	}
	if v, ok, err := boolEnv("FREEDOM_THREAT_PROTECTION"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.ThreatProtection = v
	}
	if v, ok, err := boolEnv("FREEDOM_DNS_PROTECTION"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.DNSProtection = v
	}
	if v, ok, err := boolEnv("FREEDOM_ONION_HARDENED"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.HardenedOnion = v
	}

	if v := strings.TrimSpace(os.Getenv("FREEDOM_SPLIT_TUNNEL_APPS")); v != "" {
		cfg.SplitTunnelApps = strings.Split(v, ";")
	}

	var err error
	if cfg.APIPort, err = portEnv("FREEDOM_API_PORT", cfg.APIPort); err != nil {
		return Config{}, err
	}
	if cfg.ProxyPort, err = portEnv("FREEDOM_PROXY_PORT", cfg.ProxyPort); err != nil {
		return Config{}, err
	}
	if cfg.QUICPort, err = portEnv("FREEDOM_QUIC_PORT", cfg.QUICPort); err != nil {
		return Config{}, err
	}

	if cfg.Mode == ModeSplit && len(cfg.SplitTunnelApps) == 0 {
		return Config{}, fmt.Errorf("nodeconfig: split mode requires FREEDOM_SPLIT_TUNNEL_APPS")
	}

	return cfg, nil
}

func boolEnv(key string) (value, present bool, err error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false, false, nil
	}
	switch raw {
	case "1", "true", "TRUE", "True":
		return true, true, nil
	case "0", "false", "FALSE", "False":
		return false, true, nil
	default:
		return false, false, fmt.Errorf("nodeconfig: invalid boolean for %s: %q", key, raw)
	}
}

func portEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	p, err := strconv.Atoi(raw)
	if err != nil || p <= 0 || p >= 65536 {
		return 0, fmt.Errorf("nodeconfig: invalid port for %s: %q", key, raw)
	}
	return p, nil
}
