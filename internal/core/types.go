// Package core holds the domain types shared by the review pipeline:
// changed files, findings, per-file reviews and the run summary.
package core

import (
	"path/filepath"
	"strings"
)

// FindingSource identifies what produced a finding.
type FindingSource string

const (
	SourceLinter FindingSource = "linter"
	SourceAI     FindingSource = "ai"
)

// Severity levels for findings. Linters map their own scales onto these;
// AI prose reviews carry no severity.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ChangedFile is one file of the pull request under review. Immutable input;
// the set of changed files has no duplicate paths.
type ChangedFile struct {
	Path     string
	Content  string
	Language string
}

// NewChangedFile builds a ChangedFile with the language inferred from the
// path's extension.
func NewChangedFile(path, content string) ChangedFile {
	return ChangedFile{
		Path:     path,
		Content:  content,
		Language: LanguageForPath(path),
	}
}

// LanguageForPath infers a language name from a file extension. Unknown
// extensions map to the empty string.
func LanguageForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return "python"
	case ".js", ".jsx":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".go":
		return "go"
	case ".java":
		return "java"
	case ".rb":
		return "ruby"
	case ".rs":
		return "rust"
	case ".c", ".h":
		return "c"
	case ".cpp", ".cc", ".hpp":
		return "cpp"
	case ".sh":
		return "shell"
	default:
		return ""
	}
}

// Finding is a single normalized issue report from a linter or an AI review.
// Line 0 means the finding applies to the whole file.
type Finding struct {
	Source   FindingSource
	Tool     string
	Line     int
	Message  string
	Severity Severity
}

// FileReview bundles the findings for one changed file, linter findings
// before AI findings, each group in tool-invocation order.
type FileReview struct {
	File     ChangedFile
	Findings []Finding
}

// ReviewSummary holds the aggregate counts for one pipeline run.
// TotalFindings is always LinterCount + AICount.
type ReviewSummary struct {
	TotalFindings int
	LinterCount   int
	AICount       int
	FilesReviewed int
}

// Summarize folds a sequence of file reviews into a ReviewSummary.
func Summarize(reviews []FileReview) ReviewSummary {
	var s ReviewSummary
	for _, r := range reviews {
		if len(r.Findings) == 0 {
			continue
		}
		s.FilesReviewed++
		for _, f := range r.Findings {
			if f.Source == SourceAI {
				s.AICount++
			} else {
				s.LinterCount++
			}
		}
	}
	s.TotalFindings = s.LinterCount + s.AICount
	return s
}
