package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sanix-darker/reviewbot/internal/provider"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockOpenAIServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		resp := apiResponse{
			ID:    "chatcmpl-test",
			Model: "gpt-4o",
			Choices: []apiChoice{
				{
					Index:        0,
					Message:      apiMessage{Role: "assistant", Content: "Test response"},
					FinishReason: "stop",
				},
			},
			Usage: apiUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestProvider(t *testing.T, baseURL string) provider.AIProvider {
	v := viper.New()
	v.Set("api_key", "test-key")
	v.Set("base_url", baseURL)
	v.Set("model", "gpt-4o")
	v.Set("timeout", "10s")

	p, err := NewProvider(v)
	require.NoError(t, err)
	return p
}

func TestOpenAIComplete(t *testing.T) {
	server := mockOpenAIServer(t)
	defer server.Close()

	p := newTestProvider(t, server.URL)

	resp, err := p.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{
			{Role: provider.RoleUser, Content: "Hello"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Test response", resp.Content)
	assert.Equal(t, "chatcmpl-test", resp.ID)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestOpenAIComplete_AuthErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"message": "Invalid API key",
				"type":    "authentication_error",
			},
		})
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL)

	_, err := p.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{{Role: provider.RoleUser, Content: "Hello"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrAuthentication)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestOpenAIComplete_ServerErrorRetriedOnce(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL)

	_, err := p.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{{Role: provider.RoleUser, Content: "Hello"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrProviderUnavailable)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls), "transient failures get exactly one retry")
}

func TestOpenAIComplete_RecoversAfterRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(apiResponse{
			ID:      "chatcmpl-retry",
			Choices: []apiChoice{{Message: apiMessage{Content: "ok"}, FinishReason: "stop"}},
		})
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL)

	resp, err := p.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{{Role: provider.RoleUser, Content: "Hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestOpenAIValidate(t *testing.T) {
	v := viper.New()
	p, err := NewProvider(v)
	require.NoError(t, err)

	err = p.Validate(context.Background())
	assert.ErrorIs(t, err, provider.ErrAuthentication)

	v.Set("api_key", "sk-ok")
	p, err = NewProvider(v)
	require.NoError(t, err)
	assert.NoError(t, p.Validate(context.Background()))
}

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   provider.ErrorCode
	}{
		{http.StatusUnauthorized, `{}`, provider.ErrCodeAuthentication},
		{http.StatusTooManyRequests, `{}`, provider.ErrCodeRateLimit},
		{http.StatusBadRequest, `{"error":{"message":"maximum context length exceeded"}}`, provider.ErrCodeContextLength},
		{http.StatusBadRequest, `{"error":{"message":"bad field"}}`, provider.ErrCodeInvalidRequest},
		{http.StatusBadGateway, `{}`, provider.ErrCodeProviderUnavailable},
		{http.StatusGatewayTimeout, `{}`, provider.ErrCodeTimeout},
		{http.StatusTeapot, `{}`, provider.ErrCodeUnknown},
	}

	for _, tt := range tests {
		pe := classifyHTTPError("openai", tt.status, []byte(tt.body))
		assert.Equal(t, tt.want, pe.Code, "status %d", tt.status)
	}
}
