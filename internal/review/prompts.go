// Package review runs the per-file review units (linters plus one AI
// provider) and merges their findings.
package review

import (
	"fmt"
	"strings"

	"github.com/sanix-darker/reviewbot/internal/core"
)

// TruncationMarker is appended when file content is cut before sending it to
// a provider. The policy is provider-agnostic.
const TruncationMarker = "... [content truncated]"

// systemPrompt is shared by every provider for every file.
const systemPrompt = "You are an expert code reviewer."

// BuildReviewPrompt builds the fixed review prompt for one file. The
// instruction set is identical across providers; only the file path and
// content vary. Content beyond maxBytes is truncated at the last full line.
func BuildReviewPrompt(file core.ChangedFile, maxBytes int) string {
	var sb strings.Builder

	sb.WriteString("Review the following file from a pull request.\n\n")
	sb.WriteString("Focus on:\n")
	sb.WriteString("- Code quality and potential bugs\n")
	sb.WriteString("- Security vulnerabilities\n")
	sb.WriteString("- Performance\n")
	sb.WriteString("- Readability and maintainability\n")
	sb.WriteString("- Style and documentation\n\n")

	sb.WriteString(fmt.Sprintf("## File: %s\n\n", file.Path))

	fence := "```"
	if file.Language != "" {
		fence += file.Language
	}
	sb.WriteString(fence + "\n")
	sb.WriteString(TruncateContent(file.Content, maxBytes))
	sb.WriteString("\n```\n\n")

	sb.WriteString("Keep the review concise and actionable. ")
	sb.WriteString("If the file looks good, say so briefly.")

	return sb.String()
}

// TruncateContent cuts content down to at most maxBytes, breaking at the
// last complete line and appending the truncation marker. maxBytes <= 0
// disables truncation.
func TruncateContent(content string, maxBytes int) string {
	if maxBytes <= 0 || len(content) <= maxBytes {
		return content
	}

	cut := content[:maxBytes]
	if idx := strings.LastIndexByte(cut, '\n'); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "\n" + TruncationMarker
}
