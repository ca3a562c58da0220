// Package vcs abstracts the pull-request comment sink. The pipeline only
// produces payloads; delivering them to a forge (GitHub, etc.) lives behind
// the CommentSink interface so implementations can self-register the same
// way AI providers do.
package vcs

import "context"

// CommentSink delivers composed review comments to a pull request. It is
// the terminal boundary of a run: payloads are posted in composer order and
// never read back. A posting failure is the only fatal condition of the
// pipeline.
type CommentSink interface {
	// Info returns static metadata about this sink.
	Info() SinkInfo

	// PostFileComment posts a file-scoped comment. Called once per file
	// payload, in composer order.
	PostFileComment(ctx context.Context, path, body string) error

	// PostSummaryComment posts the run-wide summary. Called exactly once,
	// after every file comment.
	PostSummaryComment(ctx context.Context, body string) error

	// Validate checks that the sink is correctly configured (token present,
	// repo well-formed) and returns a descriptive error if not.
	Validate() error
}

// SinkInfo describes a comment sink.
type SinkInfo struct {
	Name    string
	BaseURL string
}

// Target identifies the pull request a sink posts to.
type Target struct {
	// Repo is the "owner/name" repository identifier.
	Repo string

	// PRNumber is the pull request number.
	PRNumber int

	// BaseURL overrides the forge API endpoint (self-hosted instances).
	BaseURL string
}
