package review

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sanix-darker/reviewbot/internal/core"
	"github.com/sanix-darker/reviewbot/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider is an in-memory AIProvider double, safe for concurrent use.
type stubProvider struct {
	name     string
	response string
	err      error
	calls    atomic.Int64

	mu      sync.Mutex
	lastReq provider.CompletionRequest
}

func (s *stubProvider) Info() provider.ProviderInfo {
	return provider.ProviderInfo{Name: s.name, DisplayName: s.name}
}

func (s *stubProvider) Complete(ctx context.Context, req provider.CompletionRequest) (*provider.CompletionResponse, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.lastReq = req
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &provider.CompletionResponse{Content: s.response}, nil
}

func (s *stubProvider) Validate(ctx context.Context) error { return nil }

func TestReviewFile(t *testing.T) {
	p := &stubProvider{name: "openai", response: "Looks good overall. Consider renaming f."}
	file := core.NewChangedFile("a.py", "def f():\n    return 1\n")

	findings, err := ReviewFile(context.Background(), p, file, 0)
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, core.SourceAI, f.Source)
	assert.Equal(t, "AI Review (openai)", f.Tool)
	assert.Equal(t, 0, f.Line, "a prose review has no line number")
	assert.Equal(t, p.response, f.Message)

	require.Len(t, p.lastReq.Messages, 2)
	assert.Equal(t, provider.RoleSystem, p.lastReq.Messages[0].Role)
	assert.Equal(t, provider.RoleUser, p.lastReq.Messages[1].Role)
	assert.Contains(t, p.lastReq.Messages[1].Content, "## File: a.py")
	require.NotNil(t, p.lastReq.Temperature)
	assert.Equal(t, 0.3, *p.lastReq.Temperature)
}

func TestReviewFileProviderFailureDegrades(t *testing.T) {
	p := &stubProvider{name: "openai", err: &provider.ProviderError{
		Code: provider.ErrCodeTimeout, Provider: "openai", Message: "request timed out",
	}}

	findings, err := ReviewFile(context.Background(), p, core.NewChangedFile("a.py", "x = 1\n"), 0)
	assert.Empty(t, findings)
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrTimeout)
	assert.Contains(t, err.Error(), "a.py")
}

func TestReviewFileEmptyResponse(t *testing.T) {
	p := &stubProvider{name: "gemini", response: ""}
	findings, err := ReviewFile(context.Background(), p, core.NewChangedFile("a.py", "x = 1\n"), 0)
	assert.NoError(t, err)
	assert.Empty(t, findings)
}
