package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/pkg/config"
)

// ErrSecretNotFound is returned when a path or field is absent.
var ErrSecretNotFound = errors.New("secret not found")

// SecretManager reads KV v2 secrets under secret/data/songorder.
type SecretManager struct {
	client *api.Client
	log    *zap.Logger
}

func NewSecretManager(address, token string, log *zap.Logger) (*SecretManager, error) {
	cfg := api.DefaultConfig()
	cfg.Address = address

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	client.SetToken(token)

	return &SecretManager{client: client, log: log}, nil
}

func (sm *SecretManager) read(ctx context.Context, path, field string) (string, error) {
	secret, err := sm.client.Logical().ReadWithContext(ctx, "secret/data/songorder/"+path)
	if err != nil {
		return "", fmt.Errorf("vault read %s: %w", path, err)
	}
	if secret == nil {
		return "", fmt.Errorf("%s: %w", path, ErrSecretNotFound)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("%s: %w", path, ErrSecretNotFound)
	}
	value, ok := data[field].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%s.%s: %w", path, field, ErrSecretNotFound)
	}
	return value, nil
}

func (sm *SecretManager) GetDatabaseURL(ctx context.Context) (string, error) {
	return sm.read(ctx, "database", "connection_string")
}

// GetOracleAPIKey reads the key of one oracle provider (openai, anthropic, gemini).
func (sm *SecretManager) GetOracleAPIKey(ctx context.Context, provider string) (string, error) {
	return sm.read(ctx, "oracle/"+provider, "api_key")
}

func (sm *SecretManager) GetTwilioAuthToken(ctx context.Context) (string, error) {
	return sm.read(ctx, "twilio", "auth_token")
}

// Apply overwrites cfg with the secrets Vault holds. Missing secrets keep the
// configured value; any other error aborts.
func (sm *SecretManager) Apply(ctx context.Context, cfg *config.Config) error {
	provider := cfg.Oracle.Provider
	if provider == "" {
		provider = "openai"
	}

	targets := []struct {
		name string
		dst  *string
		get  func(context.Context) (string, error)
	}{
		{"database", &cfg.Database.URL, sm.GetDatabaseURL},
		{"oracle", &cfg.Oracle.APIKey, func(ctx context.Context) (string, error) {
			return sm.GetOracleAPIKey(ctx, provider)
		}},
		{"twilio", &cfg.WhatsApp.AuthToken, sm.GetTwilioAuthToken},
	}

	for _, t := range targets {
		value, err := t.get(ctx)
		if errors.Is(err, ErrSecretNotFound) {
			sm.log.Debug("Secret not in vault, keeping configured value", zap.String("secret", t.name))
			continue
		}
		if err != nil {
			return err
		}
		*t.dst = value
		sm.log.Info("Secret loaded from vault", zap.String("secret", t.name))
	}
	return nil
}
