// Package github implements vcs.CommentSink for GitHub pull requests using
// the official REST client.
package github

import (
	"context"
	"fmt"
	"strings"
	"sync"

	gh "github.com/google/go-github/v68/github"
	"github.com/sanix-darker/reviewbot/internal/vcs"
	"golang.org/x/oauth2"
)

func init() {
	vcs.Register("github", NewSink)
}

// Sink posts review comments to one GitHub pull request.
type Sink struct {
	client  *gh.Client
	baseURL string
	owner   string
	repo    string
	pr      int

	// headSHA is fetched lazily on the first file comment and cached; every
	// file comment of a run anchors to the same head commit.
	mu      sync.Mutex
	headSHA string
}

// NewSink creates a GitHub CommentSink.
func NewSink(token string, target vcs.Target) (vcs.CommentSink, error) {
	if token == "" {
		return nil, fmt.Errorf("github: token is required")
	}
	owner, repo, ok := strings.Cut(target.Repo, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("github: repository must be \"owner/name\", got %q", target.Repo)
	}
	if target.PRNumber <= 0 {
		return nil, fmt.Errorf("github: pull request number is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := gh.NewClient(oauth2.NewClient(context.Background(), ts))

	if target.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(target.BaseURL, target.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("github: invalid base URL: %w", err)
		}
	}

	return &Sink{
		client:  client,
		baseURL: target.BaseURL,
		owner:   owner,
		repo:    repo,
		pr:      target.PRNumber,
	}, nil
}

func (s *Sink) Info() vcs.SinkInfo {
	return vcs.SinkInfo{Name: "github", BaseURL: s.baseURL}
}

func (s *Sink) Validate() error {
	if s.owner == "" || s.repo == "" || s.pr <= 0 {
		return fmt.Errorf("github: incomplete pull request target")
	}
	return nil
}

// PostFileComment posts a file-level review comment on the PR's head commit.
// When the file cannot take a review comment (not part of the diff anymore,
// permissions), it falls back to a plain issue comment with a file heading
// so the finding is not lost.
func (s *Sink) PostFileComment(ctx context.Context, path, body string) error {
	sha, err := s.resolveHeadSHA(ctx)
	if err == nil {
		comment := &gh.PullRequestComment{
			Body:        gh.Ptr(body),
			Path:        gh.Ptr(path),
			CommitID:    gh.Ptr(sha),
			SubjectType: gh.Ptr("file"),
		}
		_, _, err = s.client.PullRequests.CreateComment(ctx, s.owner, s.repo, s.pr, comment)
		if err == nil {
			return nil
		}
	}

	fallback := fmt.Sprintf("**`%s`**\n\n%s", path, body)
	_, _, ferr := s.client.Issues.CreateComment(ctx, s.owner, s.repo, s.pr,
		&gh.IssueComment{Body: gh.Ptr(fallback)})
	if ferr != nil {
		return fmt.Errorf("github: failed to post comment for %s: %w", path, ferr)
	}
	return nil
}

// PostSummaryComment posts the run summary as a PR issue comment.
func (s *Sink) PostSummaryComment(ctx context.Context, body string) error {
	_, _, err := s.client.Issues.CreateComment(ctx, s.owner, s.repo, s.pr,
		&gh.IssueComment{Body: gh.Ptr(body)})
	if err != nil {
		return fmt.Errorf("github: failed to post summary comment: %w", err)
	}
	return nil
}

func (s *Sink) resolveHeadSHA(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.headSHA != "" {
		return s.headSHA, nil
	}

	pr, _, err := s.client.PullRequests.Get(ctx, s.owner, s.repo, s.pr)
	if err != nil {
		return "", fmt.Errorf("github: failed to fetch PR #%d: %w", s.pr, err)
	}
	s.headSHA = pr.GetHead().GetSHA()
	return s.headSHA, nil
}
