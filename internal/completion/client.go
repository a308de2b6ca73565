// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/jeranaias/teamchat/internal/model"
)

// DefaultModel is the model identifier used when none is configured.
const DefaultModel = openai.GPT4

// Config holds the client settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string

	// HTTPClient overrides the transport. Nil uses go-openai's default,
	// which has no timeout; callers bound calls with the context.
	HTTPClient *http.Client
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	api    *openai.Client
	model  string
	hasKey bool
	logger zerolog.Logger
}

// NewClient creates a client. A missing API key is not an error here; every
// Complete call then fails with ErrNotConfigured.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}
	m := cfg.Model
	if m == "" {
		m = DefaultModel
	}
	return &Client{
		api:    openai.NewClientWithConfig(oc),
		model:  m,
		hasKey: strings.TrimSpace(cfg.APIKey) != "",
		logger: logger.With().Str("component", "completion").Logger(),
	}
}

// Model returns the model identifier sent with each request.
func (c *Client) Model() string {
	return c.model
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.hasKey
}

// Complete sends the whole message sequence in one request. There is no
// retry; the call blocks until the service answers or ctx ends.
func (c *Client) Complete(ctx context.Context, messages []model.Message) Result {
	if !c.hasKey {
		return Result{Err: ErrNotConfigured}
	}

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAI(messages),
	}

	start := time.Now()
	c.logger.Debug().
		Str("model", c.model).
		Int("messages", len(messages)).
		Msg("completion request")

	resp, err := c.api.CreateChatCompletion(ctx, req)
	took := time.Since(start)
	if err != nil {
		mapped := mapError(err)
		c.logger.Warn().
			Str("model", c.model).
			Dur("took", took).
			Int("status", statusOf(err)).
			Err(mapped).
			Msg("completion failed")
		return Result{Err: mapped}
	}

	if len(resp.Choices) == 0 {
		c.logger.Warn().Str("model", c.model).Dur("took", took).Msg("completion returned no choices")
		return Result{Err: ErrEmptyResponse}
	}

	c.logger.Debug().
		Str("model", resp.Model).
		Dur("took", took).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Str("finish_reason", string(resp.Choices[0].FinishReason)).
		Msg("completion response")

	return Result{Content: resp.Choices[0].Message.Content}
}

func toOpenAI(messages []model.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openAIRole(m.Role),
			Content: m.Content,
		})
	}
	return out
}

func openAIRole(r model.Role) string {
	switch r {
	case model.RoleSystem:
		return openai.ChatMessageRoleSystem
	case model.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("completion canceled: %w", err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Err:        sentinelFor(apiErr.HTTPStatusCode, apiErr.Type, fmt.Sprint(apiErr.Code)),
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &APIError{
			StatusCode: reqErr.HTTPStatusCode,
			Message:    msg,
			Err:        sentinelFor(reqErr.HTTPStatusCode, "", ""),
		}
	}

	return fmt.Errorf("completion request: %w", err)
}

func sentinelFor(status int, errType, code string) error {
	if errType == "insufficient_quota" || code == "insufficient_quota" {
		return ErrQuotaExceeded
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthFailed
	case http.StatusPaymentRequired:
		return ErrQuotaExceeded
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	return nil
}

func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
