package review

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sanix-darker/reviewbot/internal/core"
	"github.com/sanix-darker/reviewbot/internal/linter"
	"github.com/sanix-darker/reviewbot/internal/provider"
)

// ProgressCallback reports pipeline progress to the CLI.
type ProgressCallback func(current, total int)

// Orchestrator fans the changed files out over a bounded worker pool. Files
// carry no data dependency on each other, so they are reviewed concurrently;
// the result sequence is reassembled in input order regardless of completion
// order.
type Orchestrator struct {
	// Linters runs the static tools for each file. Required.
	Linters *linter.Runner

	// Provider serves the AI review. Nil means no provider credential is
	// configured and the run is linter-only.
	Provider provider.AIProvider

	// Workers bounds concurrent file reviews. Zero or negative means 1.
	Workers int

	// MaxPromptBytes caps the file content sent to the provider.
	MaxPromptBytes int

	// Debug enables degradation notices on ErrWriter.
	Debug     bool
	ErrWriter io.Writer

	// OnProgress, when set, is called after each file completes.
	OnProgress ProgressCallback
}

// Run reviews every changed file and returns one FileReview per file that
// produced at least one finding, in input order. Files with zero findings
// are excluded from the result.
func (o *Orchestrator) Run(ctx context.Context, files []core.ChangedFile) []core.FileReview {
	if len(files) == 0 {
		return nil
	}

	workers := o.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	// Results are indexed by input position so concurrent completion cannot
	// reorder the output.
	results := make([][]core.Finding, len(files))
	jobs := make(chan int)
	var done int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = o.reviewOne(ctx, files[i])
				if o.OnProgress != nil {
					mu.Lock()
					done++
					o.OnProgress(done, len(files))
					mu.Unlock()
				}
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var reviews []core.FileReview
	for i, f := range files {
		if len(results[i]) == 0 {
			continue
		}
		reviews = append(reviews, core.FileReview{File: f, Findings: results[i]})
	}
	return reviews
}

// reviewOne merges the linter and AI findings for one file, linter findings
// first. Every failure inside either stage is already degraded to reduced
// findings; nothing here returns an error.
func (o *Orchestrator) reviewOne(ctx context.Context, file core.ChangedFile) []core.Finding {
	findings := o.Linters.Run(ctx, file)

	if o.Provider != nil {
		aiFindings, err := ReviewFile(ctx, o.Provider, file, o.MaxPromptBytes)
		if err != nil && o.Debug && o.ErrWriter != nil {
			fmt.Fprintf(o.ErrWriter, "[debug] %v\n", err)
		}
		findings = append(findings, aiFindings...)
	}

	return findings
}
