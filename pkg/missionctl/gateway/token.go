// Package gateway – token.go resolves the gateway auth token.
//
// Priority:
//  1. OPENCLAW_TOKEN environment variable (includes .env via godotenv)
//  2. OS keyring (Linux: Secret Service, macOS: Keychain, Windows:
//     Credential Manager)
//  3. config.yaml value (least secure — plaintext on disk)
package gateway

import (
	"log/slog"
	"os"

	"github.com/zalando/go-keyring"
)

const (
	// keyringService is the service name used in the OS keyring.
	keyringService = "missionctl"

	// keyringToken is the key name for the gateway token.
	keyringToken = "gateway_token"

	// tokenEnvVar is the environment variable checked first.
	tokenEnvVar = "OPENCLAW_TOKEN"
)

// StoreToken saves the gateway token to the OS keyring.
func StoreToken(value string) error {
	return keyring.Set(keyringService, keyringToken, value)
}

// DeleteToken removes the gateway token from the OS keyring.
func DeleteToken() error {
	return keyring.Delete(keyringService, keyringToken)
}

// ResolveToken resolves the gateway token using the priority chain:
// env var → keyring → config value. Returns empty when nothing is set;
// the gateway then sends unauthenticated requests.
func ResolveToken(configValue string, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}

	if v := os.Getenv(tokenEnvVar); v != "" {
		logger.Debug("gateway token resolved from environment")
		return v
	}

	if v, err := keyring.Get(keyringService, keyringToken); err == nil && v != "" {
		logger.Debug("gateway token resolved from OS keyring")
		return v
	}

	if configValue != "" {
		logger.Warn("gateway token read from config file; prefer the keyring or OPENCLAW_TOKEN")
	}
	return configValue
}
