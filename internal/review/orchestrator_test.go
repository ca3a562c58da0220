package review

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sanix-darker/reviewbot/internal/core"
	"github.com/sanix-darker/reviewbot/internal/linter"
	"github.com/sanix-darker/reviewbot/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pylintOnly builds a Runner whose pylint reports one warning per file and
// whose other tools stay quiet.
func pylintOnly(t *testing.T) *linter.Runner {
	t.Helper()
	r := linter.NewRunner(".", time.Second)
	r.Disabled = map[string]bool{"flake8": true, "black": true}
	r.Exec = func(ctx context.Context, command string, args []string, dir string) (string, string, error) {
		path := args[len(args)-1]
		return fmt.Sprintf("%s:1:0: W0612: Unused variable 'x' (unused-variable)\n", path), "", nil
	}
	return r
}

func silentRunner(t *testing.T) *linter.Runner {
	t.Helper()
	r := linter.NewRunner(".", time.Second)
	r.Exec = func(ctx context.Context, command string, args []string, dir string) (string, string, error) {
		return "", "", nil
	}
	return r
}

func TestOrchestratorInputOrderUnderConcurrency(t *testing.T) {
	var files []core.ChangedFile
	for i := 0; i < 20; i++ {
		files = append(files, core.NewChangedFile(fmt.Sprintf("f%02d.py", i), "x = 1\n"))
	}

	o := &Orchestrator{
		Linters:  pylintOnly(t),
		Provider: &stubProvider{name: "openai", response: "fine"},
		Workers:  4,
	}

	reviews := o.Run(context.Background(), files)
	require.Len(t, reviews, len(files))
	for i, r := range reviews {
		assert.Equal(t, files[i].Path, r.File.Path, "results keep input order")
	}
}

func TestOrchestratorExcludesZeroFindingFiles(t *testing.T) {
	files := []core.ChangedFile{
		core.NewChangedFile("a.py", "x = 1\n"),
		core.NewChangedFile("README.md", "docs\n"), // no tools, no provider findings
		core.NewChangedFile("b.py", "y = 2\n"),
	}

	o := &Orchestrator{Linters: pylintOnly(t), Workers: 2}
	reviews := o.Run(context.Background(), files)

	require.Len(t, reviews, 2)
	assert.Equal(t, "a.py", reviews[0].File.Path)
	assert.Equal(t, "b.py", reviews[1].File.Path)
}

func TestOrchestratorLinterFindingsBeforeAI(t *testing.T) {
	o := &Orchestrator{
		Linters:  pylintOnly(t),
		Provider: &stubProvider{name: "anthropic", response: "a prose review"},
		Workers:  1,
	}

	reviews := o.Run(context.Background(), []core.ChangedFile{core.NewChangedFile("a.py", "x = 1\n")})
	require.Len(t, reviews, 1)
	require.Len(t, reviews[0].Findings, 2)
	assert.Equal(t, core.SourceLinter, reviews[0].Findings[0].Source)
	assert.Equal(t, core.SourceAI, reviews[0].Findings[1].Source)
}

func TestOrchestratorNilProviderIsLinterOnly(t *testing.T) {
	o := &Orchestrator{Linters: pylintOnly(t), Workers: 2}

	reviews := o.Run(context.Background(), []core.ChangedFile{
		core.NewChangedFile("a.py", "x = 1\n"),
		core.NewChangedFile("b.py", "y = 2\n"),
	})

	require.Len(t, reviews, 2)
	for _, r := range reviews {
		for _, f := range r.Findings {
			assert.Equal(t, core.SourceLinter, f.Source)
		}
	}
}

func TestOrchestratorProviderFailureDegradesToLinterFindings(t *testing.T) {
	failing := &stubProvider{name: "openai", err: &provider.ProviderError{
		Code: provider.ErrCodeProviderUnavailable, Provider: "openai", Message: "bad gateway",
	}}

	var errBuf bytes.Buffer
	o := &Orchestrator{
		Linters:   pylintOnly(t),
		Provider:  failing,
		Workers:   1,
		Debug:     true,
		ErrWriter: &errBuf,
	}

	reviews := o.Run(context.Background(), []core.ChangedFile{core.NewChangedFile("a.py", "x = 1\n")})
	require.Len(t, reviews, 1)
	require.Len(t, reviews[0].Findings, 1)
	assert.Equal(t, core.SourceLinter, reviews[0].Findings[0].Source)
	assert.Contains(t, errBuf.String(), "[debug]")
}

func TestOrchestratorEmptyInput(t *testing.T) {
	o := &Orchestrator{Linters: silentRunner(t)}
	assert.Nil(t, o.Run(context.Background(), nil))
}

func TestOrchestratorProviderCalledOncePerFile(t *testing.T) {
	p := &stubProvider{name: "gemini", response: "fine"}
	o := &Orchestrator{Linters: silentRunner(t), Provider: p, Workers: 3}

	var files []core.ChangedFile
	for i := 0; i < 7; i++ {
		files = append(files, core.NewChangedFile("f"+strconv.Itoa(i)+".py", "x = 1\n"))
	}
	o.Run(context.Background(), files)
	assert.Equal(t, int64(7), p.calls.Load())
}

func TestOrchestratorProgressCallback(t *testing.T) {
	var seen atomic.Int64
	var lastTotal int
	o := &Orchestrator{
		Linters: silentRunner(t),
		Workers: 2,
		OnProgress: func(current, total int) {
			seen.Add(1)
			lastTotal = total
		},
	}

	files := []core.ChangedFile{
		core.NewChangedFile("a.py", "x = 1\n"),
		core.NewChangedFile("b.py", "y = 2\n"),
		core.NewChangedFile("c.py", "z = 3\n"),
	}
	o.Run(context.Background(), files)

	assert.Equal(t, int64(3), seen.Load())
	assert.Equal(t, 3, lastTotal)
}

func TestOrchestratorWorkerCapClampedToFileCount(t *testing.T) {
	// More workers than files must not deadlock or drop work.
	o := &Orchestrator{
		Linters:  pylintOnly(t),
		Provider: &stubProvider{name: "openai", response: strings.Repeat("ok ", 3)},
		Workers:  16,
	}
	reviews := o.Run(context.Background(), []core.ChangedFile{core.NewChangedFile("a.py", "x = 1\n")})
	require.Len(t, reviews, 1)
}
