package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sanix-darker/reviewbot/internal/provider"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, baseURL, model string) provider.AIProvider {
	v := viper.New()
	v.Set("api_key", "test-key")
	v.Set("base_url", baseURL)
	if model != "" {
		v.Set("model", model)
	}
	v.Set("timeout", "10s")

	p, err := NewProvider(v)
	require.NoError(t, err)
	return p
}

func TestGeminiComplete(t *testing.T) {
	var gotReq apiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The model rides in the URL path, not the body.
		require.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(apiResponse{
			ResponseID:   "resp-test",
			ModelVersion: "gemini-2.0-flash",
			Candidates: []apiCandidate{
				{
					Content:      apiContent{Role: "model", Parts: []apiPart{{Text: "Looks good."}}},
					FinishReason: "STOP",
				},
			},
			UsageMetadata: apiUsage{PromptTokenCount: 8, CandidatesTokenCount: 3, TotalTokenCount: 11},
		})
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, "")

	resp, err := p.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{
			{Role: provider.RoleSystem, Content: "You are a reviewer."},
			{Role: provider.RoleUser, Content: "Review this."},
		},
	})
	require.NoError(t, err)

	// System messages land in systemInstruction; user messages in contents.
	require.NotNil(t, gotReq.SystemInstruction)
	assert.Equal(t, "You are a reviewer.", gotReq.SystemInstruction.Parts[0].Text)
	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "user", gotReq.Contents[0].Role)
	require.NotNil(t, gotReq.GenerationConfig)
	assert.NotZero(t, gotReq.GenerationConfig.MaxOutputTokens)

	assert.Equal(t, "Looks good.", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 11, resp.Usage.TotalTokens)
}

func TestGeminiComplete_RateLimit(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"code":    429,
				"message": "Resource has been exhausted",
				"status":  "RESOURCE_EXHAUSTED",
			},
		})
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, "")

	_, err := p.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{{Role: provider.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrRateLimit)
	assert.Equal(t, 2, calls, "rate limits are retried once")
}

func TestGeminiComplete_ModelOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/gemini-2.5-pro:generateContent", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(apiResponse{})
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, "gemini-2.5-pro")

	resp, err := p.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.Message{{Role: provider.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Content)
}

func TestGeminiValidate(t *testing.T) {
	p, err := NewProvider(viper.New())
	require.NoError(t, err)
	assert.ErrorIs(t, p.Validate(context.Background()), provider.ErrAuthentication)
}
