// Package gemini implements the oracle on the Google GenAI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/seu-repo/songorder/pkg/config"
)

const defaultModel = "gemini-2.5-flash"

type Oracle struct {
	client    *genai.Client
	model     string
	maxTokens int
	log       *zap.Logger
}

func NewOracle(ctx context.Context, cfg config.OracleConfig, log *zap.Logger) (*Oracle, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key missing; provide oracle.api_key")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Oracle{client: client, model: model, maxTokens: cfg.MaxTokens, log: log}, nil
}

func (o *Oracle) Extract(ctx context.Context, prompt string, temperature float64) (string, error) {
	gc := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(temperature)),
		ResponseMIMEType: "application/json",
	}
	if o.maxTokens > 0 {
		gc.MaxOutputTokens = int32(o.maxTokens)
	}

	resp, err := o.client.Models.GenerateContent(ctx, o.model, genai.Text(prompt), gc)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	if resp.UsageMetadata != nil {
		o.log.Debug("Gemini generation finished",
			zap.String("model", o.model),
			zap.Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount),
			zap.Int32("candidate_tokens", resp.UsageMetadata.CandidatesTokenCount),
		)
	}
	return text, nil
}
