package review

import (
	"context"
	"fmt"

	"github.com/sanix-darker/reviewbot/internal/core"
	"github.com/sanix-darker/reviewbot/internal/provider"
)

// reviewTemperature keeps the reviews focused and mostly deterministic.
const reviewTemperature = 0.3

// ReviewFile asks the provider for a prose review of one file and wraps the
// response as a single AI finding with no line number: the response is
// prose, attached as the message. Any provider failure (auth, timeout after
// retry, HTTP error) degrades to zero findings; the error is returned for
// debug logging only and must not abort the run.
func ReviewFile(ctx context.Context, p provider.AIProvider, file core.ChangedFile, maxPromptBytes int) ([]core.Finding, error) {
	temp := reviewTemperature
	req := provider.CompletionRequest{
		Messages: []provider.Message{
			{Role: provider.RoleSystem, Content: systemPrompt},
			{Role: provider.RoleUser, Content: BuildReviewPrompt(file, maxPromptBytes)},
		},
		Temperature: &temp,
	}

	resp, err := p.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("ai review of %s failed: %w", file.Path, err)
	}
	if resp.Content == "" {
		return nil, nil
	}

	return []core.Finding{{
		Source:  core.SourceAI,
		Tool:    fmt.Sprintf("AI Review (%s)", p.Info().DisplayName),
		Message: resp.Content,
	}}, nil
}
