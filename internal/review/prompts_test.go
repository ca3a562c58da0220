package review

import (
	"strings"
	"testing"

	"github.com/sanix-darker/reviewbot/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestBuildReviewPrompt(t *testing.T) {
	file := core.NewChangedFile("pkg/a.py", "def f():\n    return 1\n")
	prompt := BuildReviewPrompt(file, 0)

	assert.Contains(t, prompt, "## File: pkg/a.py")
	assert.Contains(t, prompt, "```python\n")
	assert.Contains(t, prompt, "def f():")
	assert.Contains(t, prompt, "Security vulnerabilities")
	assert.NotContains(t, prompt, TruncationMarker)
}

func TestBuildReviewPromptUnknownLanguage(t *testing.T) {
	file := core.NewChangedFile("Makefile", "all:\n\ttrue\n")
	prompt := BuildReviewPrompt(file, 0)

	assert.Contains(t, prompt, "```\nall:", "no language tag on the fence")
}

func TestBuildReviewPromptIdenticalAcrossCalls(t *testing.T) {
	file := core.NewChangedFile("a.go", "package a\n")
	assert.Equal(t, BuildReviewPrompt(file, 0), BuildReviewPrompt(file, 0))
}

func TestTruncateContent(t *testing.T) {
	content := strings.Repeat("line one\n", 100)

	t.Run("under limit untouched", func(t *testing.T) {
		assert.Equal(t, content, TruncateContent(content, len(content)))
	})

	t.Run("no limit", func(t *testing.T) {
		assert.Equal(t, content, TruncateContent(content, 0))
	})

	t.Run("cuts at last full line", func(t *testing.T) {
		got := TruncateContent(content, 100)
		assert.LessOrEqual(t, len(got), 100+len("\n"+TruncationMarker))
		assert.True(t, strings.HasSuffix(got, "\n"+TruncationMarker))
		body := strings.TrimSuffix(got, "\n"+TruncationMarker)
		assert.True(t, strings.HasSuffix(body, "line one"), "cut happens at a line boundary")
	})

	t.Run("single long line", func(t *testing.T) {
		long := strings.Repeat("x", 500)
		got := TruncateContent(long, 100)
		assert.True(t, strings.HasSuffix(got, TruncationMarker))
		assert.True(t, strings.HasPrefix(got, strings.Repeat("x", 100)))
	})
}
