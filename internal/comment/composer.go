// Package comment turns per-file review results into the comment payloads
// posted back to the pull request: one payload per reviewed file plus one
// run-wide summary, always last and always emitted.
package comment

import (
	"fmt"
	"strings"

	"github.com/sanix-darker/reviewbot/internal/core"
)

// Kind distinguishes the two payload targets.
type Kind string

const (
	KindFile    Kind = "file"
	KindSummary Kind = "summary"
)

// Payload is a unit of output text destined for the pull request, either
// file-scoped or the run-wide summary. Produced once, handed to the comment
// sink, never read back.
type Payload struct {
	Kind Kind
	Path string // set for KindFile
	Body string
}

// Compose builds the ordered payload sequence: one file payload per review,
// then exactly one summary. An empty review sequence still yields the
// summary; it is the single unconditional output of a run.
func Compose(reviews []core.FileReview, maxPerFile int) []Payload {
	payloads := make([]Payload, 0, len(reviews)+1)

	for _, r := range reviews {
		payloads = append(payloads, Payload{
			Kind: KindFile,
			Path: r.File.Path,
			Body: fileBody(r, maxPerFile),
		})
	}

	payloads = append(payloads, Payload{
		Kind: KindSummary,
		Body: SummaryBody(core.Summarize(reviews)),
	})

	return payloads
}

// fileBody renders one file review: a heading, one line per linter finding
// and the AI prose review as its own section. Findings beyond maxPerFile are
// folded into a trailing count so a noisy file cannot produce an unbounded
// comment.
func fileBody(r core.FileReview, maxPerFile int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Code Review: `%s`\n\n", r.File.Path))

	shown := 0
	hidden := 0
	for _, f := range r.Findings {
		if f.Source == core.SourceAI {
			// Prose reviews are short already and carry their own heading.
			sb.WriteString(fmt.Sprintf("### %s\n\n%s\n\n", f.Tool, strings.TrimSpace(f.Message)))
			continue
		}
		if maxPerFile > 0 && shown >= maxPerFile {
			hidden++
			continue
		}
		shown++
		if f.Line > 0 {
			sb.WriteString(fmt.Sprintf("- **%s** [%s] line %d: %s\n", f.Tool, f.Severity, f.Line, f.Message))
		} else {
			sb.WriteString(fmt.Sprintf("- **%s** [%s]: %s\n", f.Tool, f.Severity, f.Message))
		}
	}

	if hidden > 0 {
		sb.WriteString(fmt.Sprintf("\n_... and %d more findings not shown._\n", hidden))
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// SummaryBody renders the run-wide summary from the aggregate counts.
func SummaryBody(s core.ReviewSummary) string {
	var sb strings.Builder
	sb.WriteString("## Code Review Summary\n\n")

	if s.TotalFindings == 0 {
		sb.WriteString("No issues found.\n\n")
	}

	sb.WriteString(fmt.Sprintf("- Files reviewed: %d\n", s.FilesReviewed))
	sb.WriteString(fmt.Sprintf("- Total findings: %d\n", s.TotalFindings))
	sb.WriteString(fmt.Sprintf("  - Linters: %d\n", s.LinterCount))
	sb.WriteString(fmt.Sprintf("  - AI review: %d\n", s.AICount))

	return sb.String()
}
