package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/adapter/ai/anthropic"
	"github.com/seu-repo/songorder/internal/adapter/ai/gemini"
	"github.com/seu-repo/songorder/internal/adapter/ai/offline"
	"github.com/seu-repo/songorder/internal/adapter/ai/openai"
	"github.com/seu-repo/songorder/internal/ports"
	"github.com/seu-repo/songorder/pkg/config"
)

// NewOracle builds the provider named by oracle.provider behind a Guard.
func NewOracle(ctx context.Context, cfg config.OracleConfig, cb config.CircuitBreakerConfig, log *zap.Logger) (*Guard, error) {
	var (
		oracle ports.Oracle
		err    error
	)
	switch cfg.Provider {
	case "openai", "":
		oracle, err = openai.NewOracle(cfg, log)
	case "anthropic":
		oracle, err = anthropic.NewOracle(cfg, log)
	case "gemini":
		oracle, err = gemini.NewOracle(ctx, cfg, log)
	case "offline":
		oracle = offline.NewOracle()
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}
	log.Info("Oracle initialized",
		zap.String("provider", provider),
		zap.String("model", cfg.Model),
	)
	return NewGuard(oracle, provider, cb, log), nil
}
