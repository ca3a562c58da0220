// Package gemini implements the AIProvider interface for the Google Gemini
// generateContent REST API.
//
// Gemini's API differs from OpenAI's in several key ways:
//   - The model is part of the URL path, not the request body.
//   - Authentication uses the "x-goog-api-key" header.
//   - Messages are "contents" with a "parts" array; the assistant role is
//     called "model" and the system prompt goes in "systemInstruction".
//   - Generation parameters live under "generationConfig".
//
// This implementation normalizes all of those differences behind the
// provider.AIProvider interface.
package gemini

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
	provider.Register("gemini", NewProvider)
}

// ---------------------------------------------------------------------------
// Gemini-specific API types
// ---------------------------------------------------------------------------

type apiPart struct {
	Text string `json:"text"`
}

type apiContent struct {
	Role  string    `json:"role,omitempty"`
	Parts []apiPart `json:"parts"`
}

type apiGenerationConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

type apiRequest struct {
	Contents          []apiContent         `json:"contents"`
	SystemInstruction *apiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *apiGenerationConfig `json:"generationConfig,omitempty"`
}

type apiCandidate struct {
	Content      apiContent `json:"content"`
	FinishReason string     `json:"finishReason"`
}

type apiUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type apiResponse struct {
	Candidates    []apiCandidate `json:"candidates"`
	UsageMetadata apiUsage       `json:"usageMetadata"`
	ModelVersion  string         `json:"modelVersion"`
	ResponseID    string         `json:"responseId"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ---------------------------------------------------------------------------
// Provider implementation
// ---------------------------------------------------------------------------

// Provider implements provider.AIProvider for the Gemini generateContent API.
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
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := v.GetString("model")
	if model == "" {
		model = "gemini-2.0-flash"
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
		SetHeader("Content-Type", "application/json")

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
		Name:         "gemini",
		DisplayName:  "Gemini",
		Description:  "Google Gemini generateContent API",
		DefaultModel: "gemini-2.0-flash",
	}
}

// Validate checks that the API key is set.
func (p *Provider) Validate(ctx context.Context) error {
	if p.apiKey == "" {
		return &provider.ProviderError{
			Code:     provider.ErrCodeAuthentication,
			Message:  "GEMINI_API_KEY is not set",
			Provider: "gemini",
		}
	}
	return nil
}

// Complete performs a synchronous content generation with retry on transient
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

	body := toAPIRequest(req, maxTok)

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", p.apiKey).
		SetBody(body).
		Post(fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, model))
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
			Provider: "gemini",
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
			Provider: "gemini",
			Cause:    err,
		}
	}

	return toCompletionResponse(&apiResp), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func toAPIRequest(req provider.CompletionRequest, maxTok int) apiRequest {
	out := apiRequest{
		GenerationConfig: &apiGenerationConfig{
			MaxOutputTokens: maxTok,
			Temperature:     req.Temperature,
			StopSequences:   req.StopSequences,
		},
	}

	for _, m := range req.Messages {
		switch m.Role {
		case provider.RoleSystem:
			if out.SystemInstruction == nil {
				out.SystemInstruction = &apiContent{}
			}
			out.SystemInstruction.Parts = append(
				out.SystemInstruction.Parts, apiPart{Text: m.Content})
		case provider.RoleAssistant:
			out.Contents = append(out.Contents, apiContent{
				Role:  "model",
				Parts: []apiPart{{Text: m.Content}},
			})
		default:
			out.Contents = append(out.Contents, apiContent{
				Role:  "user",
				Parts: []apiPart{{Text: m.Content}},
			})
		}
	}

	return out
}

func toCompletionResponse(r *apiResponse) *provider.CompletionResponse {
	resp := &provider.CompletionResponse{
		ID:    r.ResponseID,
		Model: r.ModelVersion,
		Usage: provider.Usage{
			PromptTokens:     r.UsageMetadata.PromptTokenCount,
			CompletionTokens: r.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      r.UsageMetadata.TotalTokenCount,
		},
	}

	if len(r.Candidates) > 0 {
		var sb strings.Builder
		for _, part := range r.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
		resp.Content = sb.String()
		resp.FinishReason = strings.ToLower(r.Candidates[0].FinishReason)
	}

	return resp
}

// classifyHTTPError maps Gemini HTTP status codes to normalized provider
// errors.
func classifyHTTPError(statusCode int, body []byte) *provider.ProviderError {
	var apiErr apiError
	_ = json.Unmarshal(body, &apiErr)
	msg := apiErr.Error.Message
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", statusCode)
	}

	pe := &provider.ProviderError{
		Provider:   "gemini",
		Message:    msg,
		StatusCode: statusCode,
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		pe.Code = provider.ErrCodeAuthentication
	case statusCode == http.StatusTooManyRequests:
		pe.Code = provider.ErrCodeRateLimit
	case statusCode == http.StatusBadRequest:
		if apiErr.Error.Status == "INVALID_ARGUMENT" &&
			strings.Contains(msg, "token") {
			pe.Code = provider.ErrCodeContextLength
		} else {
			pe.Code = provider.ErrCodeInvalidRequest
		}
	case statusCode == http.StatusGatewayTimeout:
		pe.Code = provider.ErrCodeTimeout
	case statusCode >= 500:
		pe.Code = provider.ErrCodeProviderUnavailable
	default:
		pe.Code = provider.ErrCodeUnknown
	}

	return pe
}
