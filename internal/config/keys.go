package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// keyring service the API keys are stored under, one entry per provider
const KeyringService = "pdf2video"

// provider -> environment variable holding its API key
var apiKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"gemini":    "GEMINI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// replaced in tests
var keyringGet = keyring.Get

// APIKey resolves the key for provider: the explicit value first, then the
// provider's environment variable, then the OS keyring.
func APIKey(provider, explicit string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit, nil
	}
	envVar, ok := apiKeyEnv[provider]
	if !ok {
		return "", fmt.Errorf("unknown API provider %q", provider)
	}
	if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
		return v, nil
	}
	// a missing entry and an unavailable keyring are treated alike
	if v, err := keyringGet(KeyringService, provider); err == nil && v != "" {
		return v, nil
	}
	return "", fmt.Errorf(
		"API key is required: use --api-key flag, set %s environment variable, or store it in the keyring (service %q, user %q)",
		envVar,
		KeyringService,
		provider,
	)
}

// StoreAPIKey saves key for provider in the OS keyring.
func StoreAPIKey(provider, key string) error {
	if _, ok := apiKeyEnv[provider]; !ok {
		return fmt.Errorf("unknown API provider %q", provider)
	}
	if err := keyring.Set(KeyringService, provider, key); err != nil {
		return fmt.Errorf("failed to store %s key in keyring: %w", provider, err)
	}
	return nil
}
