// Package openai implements the oracle on the OpenAI chat completions API
// and any OpenAI-compatible endpoint (base_url).
package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/pkg/config"
)

const defaultModel = "gpt-4o-mini"

const systemPrompt = "You extract structured order data and reply with a single JSON object."

type Oracle struct {
	client    openai.Client
	model     string
	maxTokens int
	log       *zap.Logger
}

func NewOracle(cfg config.OracleConfig, log *zap.Logger) (*Oracle, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key missing; provide oracle.api_key")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Oracle{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		log:       log,
	}, nil
}

func (o *Oracle) Extract(ctx context.Context, prompt string, temperature float64) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
	}
	if o.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(o.maxTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}

	o.log.Debug("OpenAI completion finished",
		zap.String("model", o.model),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)
	return resp.Choices[0].Message.Content, nil
}
