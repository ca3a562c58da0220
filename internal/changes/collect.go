// Package changes loads the changed files of a pull request from a local
// checkout by diffing the base and head revisions. The CI trigger provides
// the checkout and both refs; nothing here talks to the network.
package changes

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sanix-darker/reviewbot/internal/core"
	git "gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/plumbing"
	"gopkg.in/src-d/go-git.v4/plumbing/object"
	"gopkg.in/src-d/go-git.v4/utils/merkletrie"
)

// Options controls which changed files are collected.
type Options struct {
	// MaxFileSize skips files larger than this many bytes (0 = no limit).
	MaxFileSize int64

	// Include holds glob patterns ("*.py") a file must match to be
	// reviewed. Empty means every changed file is a candidate.
	Include []string

	// Exclude holds glob patterns ("*.min.js") and directory prefixes
	// ("node_modules/") that are never reviewed. Exclusion wins over
	// inclusion.
	Exclude []string
}

// Collect returns the files changed between baseRef and headRef, in diff
// order, deduplicated by path. Deleted and binary files are skipped: there
// is nothing to review in them.
func Collect(repoPath, baseRef, headRef string, opts Options) ([]core.ChangedFile, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", repoPath, err)
	}

	baseTree, err := treeAt(repo, baseRef)
	if err != nil {
		return nil, err
	}
	headTree, err := treeAt(repo, headRef)
	if err != nil {
		return nil, err
	}

	diff, err := object.DiffTree(baseTree, headTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s..%s: %w", baseRef, headRef, err)
	}

	var files []core.ChangedFile
	seen := map[string]bool{}

	for _, change := range diff {
		action, err := change.Action()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve change action: %w", err)
		}
		if action == merkletrie.Delete {
			continue
		}

		path := change.To.Name
		if seen[path] || !Included(path, opts.Include) || Excluded(path, opts.Exclude) {
			continue
		}

		file, err := headTree.File(path)
		if err != nil {
			continue
		}
		if opts.MaxFileSize > 0 && file.Blob.Size > opts.MaxFileSize {
			continue
		}
		if bin, err := file.IsBinary(); err != nil || bin {
			continue
		}

		content, err := file.Contents()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		seen[path] = true
		files = append(files, core.NewChangedFile(path, content))
	}

	return files, nil
}

// Included reports whether a path matches at least one inclusion pattern,
// globs matched against the base name. An empty pattern list includes
// everything.
func Included(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}

// Excluded reports whether a path matches any exclusion pattern. Patterns
// ending in "/" are directory prefixes; the rest are globs matched against
// the base name.
func Excluded(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, p := range patterns {
		if strings.HasSuffix(p, "/") {
			dir := strings.TrimSuffix(p, "/")
			if path == dir || strings.HasPrefix(path, dir+"/") || strings.Contains(path, "/"+dir+"/") {
				return true
			}
			continue
		}
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}

func treeAt(repo *git.Repository, ref string) (*object.Tree, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", ref, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree for %s: %w", hash, err)
	}
	return tree, nil
}
