// Package config loads rpcserve server settings from the environment.
// A .env file in the working directory is honored via godotenv, so local
// development and deployment read the same variable names.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/mnehpets/rpcserve/auth"
)

// Environment variable names.
const (
	EnvAddr         = "RPCSERVE_ADDR"
	EnvRoute        = "RPCSERVE_ROUTE"
	EnvRealm        = "RPCSERVE_REALM"
	EnvRequireAuth  = "RPCSERVE_REQUIRE_AUTH"
	EnvTicketKeyID  = "RPCSERVE_TICKET_KEY_ID"
	EnvTicketKey    = "RPCSERVE_TICKET_KEY"
	EnvTicketTTL    = "RPCSERVE_TICKET_TTL"
	EnvOIDCIssuer   = "RPCSERVE_OIDC_ISSUER"
	EnvOIDCClientID = "RPCSERVE_OIDC_CLIENT_ID"
)

// Config holds the transport and auth settings of an rpcserve server.
type Config struct {
	// Addr is the listen address.
	Addr string
	// Route is the path the RPC handler mounts at.
	Route string
	// Realm is the authentication realm advertised on 401 responses.
	Realm string
	// RequireAuth rejects requests without credentials.
	RequireAuth bool

	// TicketKeyID and TicketKey configure the session-ticket codec.
	// An empty key disables tickets.
	TicketKeyID string
	TicketKey   []byte
	TicketTTL   time.Duration

	// OIDCIssuer and OIDCClientID configure bearer-token verification.
	// An empty issuer disables it.
	OIDCIssuer   string
	OIDCClientID string
}

// Load reads the configuration from a .env file (when present) and the
// process environment.
func Load() (*Config, error) {
	// Missing .env is not an error; the environment alone may be complete.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Addr:         getenv(EnvAddr, ":8080"),
		Route:        getenv(EnvRoute, "/rpc"),
		Realm:        getenv(EnvRealm, "rpc"),
		TicketKeyID:  getenv(EnvTicketKeyID, "v1"),
		TicketTTL:    time.Hour,
		OIDCIssuer:   os.Getenv(EnvOIDCIssuer),
		OIDCClientID: os.Getenv(EnvOIDCClientID),
	}

	if v := os.Getenv(EnvRequireAuth); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvRequireAuth, err)
		}
		cfg.RequireAuth = b
	}

	if v := os.Getenv(EnvTicketKey); v != "" {
		key, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvTicketKey, err)
		}
		if len(key) != auth.DefaultAEADKeySize {
			return nil, fmt.Errorf("config: %s: key must be %d bytes, got %d", EnvTicketKey, auth.DefaultAEADKeySize, len(key))
		}
		cfg.TicketKey = key
	}

	if v := os.Getenv(EnvTicketTTL); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvTicketTTL, err)
		}
		if ttl <= 0 {
			return nil, fmt.Errorf("config: %s: ttl must be positive", EnvTicketTTL)
		}
		cfg.TicketTTL = ttl
	}

	if cfg.OIDCIssuer != "" && cfg.OIDCClientID == "" {
		return nil, fmt.Errorf("config: %s is required when %s is set", EnvOIDCClientID, EnvOIDCIssuer)
	}

	return cfg, nil
}

func getenv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
