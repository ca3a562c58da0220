// Package anthropic implements the AIProvider interface for the Anthropic
// Messages API (Claude models).
//
// Anthropic's API differs from OpenAI's in several key ways:
//   - The system prompt is a top-level field, not a message.
//   - The response body uses "content" as an array of typed blocks.
//   - Authentication uses "x-api-key" header, not Bearer tokens.
//   - max_tokens is required (not optional).
//
// This implementation normalizes all of those differences behind the
// provider.AIProvider interface.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sanix-darker/reviewbot/internal/provider"
	"github.com/spf13/viper"
)

// ---------------------------------------------------------------------------
// Registration
// ---------------------------------------------------------------------------

func init() {
	provider.Register("anthropic", NewProvider)
}

// ---------------------------------------------------------------------------
// Anthropic-specific API types
// ---------------------------------------------------------------------------

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiRequest struct {
	Model     string       `json:"model"`
	Messages  []apiMessage `json:"messages"`
	System    string       `json:"system,omitempty"`
	MaxTokens int          `json:"max_tokens"`

	// Optional parameters.
	Temperature   *float64 `json:"temperature,omitempty"`
	StopSequences []string `json:"stop_sequences,omitempty"`
}

type apiContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type apiResponse struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"` // "message"
	Role       string            `json:"role"`
	Content    []apiContentBlock `json:"content"`
	Model      string            `json:"model"`
	StopReason string            `json:"stop_reason"`
	Usage      apiUsage          `json:"usage"`
}

type apiError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ---------------------------------------------------------------------------
// Provider implementation
// ---------------------------------------------------------------------------

const anthropicVersion = "2023-06-01"

// Provider implements provider.AIProvider for the Anthropic Messages API.
type Provider struct {
	client   *resty.Client
	apiKey   string
	baseURL  string
	model    string
	maxTok   int
	retryCfg provider.RetryConfig
}

// NewProvider is the factory function registered with the provider registry.
func NewProvider(v *viper.Viper) (provider.AIProvider, error) {
	apiKey := v.GetString("api_key")
	baseURL := v.GetString("base_url")
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	model := v.GetString("model")
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	maxTok := v.GetInt("max_tokens")
	if maxTok == 0 {
		maxTok = 1000
	}
	timeout := v.GetDuration("timeout")
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("anthropic-version", anthropicVersion)

	return &Provider{
		client:   client,
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		model:    model,
		maxTok:   maxTok,
		retryCfg: provider.DefaultRetryConfig(),
	}, nil
}

// Info returns provider metadata.
func (p *Provider) Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:         "anthropic",
		DisplayName:  "Anthropic",
		Description:  "Anthropic Messages API (Claude models)",
		DefaultModel: "claude-sonnet-4-20250514",
	}
}

// Validate checks that the API key is set.
func (p *Provider) Validate(ctx context.Context) error {
	if p.apiKey == "" {
		return &provider.ProviderError{
			Code:     provider.ErrCodeAuthentication,
			Message:  "ANTHROPIC_API_KEY is not set",
			Provider: "anthropic",
		}
	}
	return nil
}

// Complete performs a synchronous message completion with retry on transient
// failures.
func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (*provider.CompletionResponse, error) {
	return provider.WithRetry(ctx, p.retryCfg, func() (*provider.CompletionResponse, error) {
		return p.doComplete(ctx, req)
	})
}

func (p *Provider) doComplete(ctx context.Context, req provider.CompletionRequest) (*provider.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}
	maxTok := req.MaxTokens
	if maxTok == 0 {
		maxTok = p.maxTok
	}

	// Lift system messages out of the conversation: Anthropic wants them in
	// a dedicated top-level field.
	var system string
	var msgs []apiMessage
	for _, m := range req.Messages {
		if m.Role == provider.RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		msgs = append(msgs, apiMessage{Role: string(m.Role), Content: m.Content})
	}

	body := apiRequest{
		Model:         model,
		Messages:      msgs,
		System:        system,
		MaxTokens:     maxTok,
		Temperature:   req.Temperature,
		StopSequences: req.StopSequences,
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("x-api-key", p.apiKey).
		SetBody(body).
		Post(p.baseURL + "/v1/messages")
	if err != nil {
		code := provider.ErrCodeProviderUnavailable
		msg := "HTTP request failed"
		if errors.Is(err, context.DeadlineExceeded) {
			code = provider.ErrCodeTimeout
			msg = "request timed out"
		}
		return nil, &provider.ProviderError{
			Code:     code,
			Message:  msg,
			Provider: "anthropic",
			Cause:    err,
		}
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, classifyHTTPError(resp.StatusCode(), resp.Body())
	}

	var apiResp apiResponse
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		return nil, &provider.ProviderError{
			Code:     provider.ErrCodeUnknown,
			Message:  "failed to decode response",
			Provider: "anthropic",
			Cause:    err,
		}
	}

	return toCompletionResponse(&apiResp), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func toCompletionResponse(r *apiResponse) *provider.CompletionResponse {
	var sb strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return &provider.CompletionResponse{
		ID:           r.ID,
		Model:        r.Model,
		Content:      sb.String(),
		FinishReason: r.StopReason,
		Usage: provider.Usage{
			PromptTokens:     r.Usage.InputTokens,
			CompletionTokens: r.Usage.OutputTokens,
			TotalTokens:      r.Usage.InputTokens + r.Usage.OutputTokens,
		},
	}
}

// classifyHTTPError maps Anthropic HTTP status codes to normalized provider
// errors.
func classifyHTTPError(statusCode int, body []byte) *provider.ProviderError {
	var apiErr apiError
	_ = json.Unmarshal(body, &apiErr)
	msg := apiErr.Error.Message
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", statusCode)
	}

	pe := &provider.ProviderError{
		Provider:   "anthropic",
		Message:    msg,
		StatusCode: statusCode,
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		pe.Code = provider.ErrCodeAuthentication
	case statusCode == http.StatusTooManyRequests:
		pe.Code = provider.ErrCodeRateLimit
	case statusCode == http.StatusBadRequest:
		if apiErr.Error.Type == "invalid_request_error" &&
			strings.Contains(msg, "prompt is too long") {
			pe.Code = provider.ErrCodeContextLength
		} else {
			pe.Code = provider.ErrCodeInvalidRequest
		}
	case statusCode == statusOverloaded || statusCode >= 500:
		pe.Code = provider.ErrCodeProviderUnavailable
	default:
		pe.Code = provider.ErrCodeUnknown
	}

	return pe
}

// Anthropic returns 529 when overloaded; net/http has no named constant.
const statusOverloaded = 529
