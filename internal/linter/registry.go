// Package linter maps file types to external static-analysis tools, runs
// them as subprocesses with a bounded timeout and normalizes their output
// into findings. Tool failures degrade to zero (or one informational)
// finding instead of aborting the review.
package linter

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/sanix-darker/reviewbot/internal/core"
)

// Tool describes one linter invocation: the executable, its argument
// template (the file path is appended last) and the parser for the tool's
// output grammar.
type Tool struct {
	Name    string
	Command string
	Args    []string
	Parse   ParseFunc
}

// ParseFunc extracts findings from a tool's raw output. Unparsable lines are
// dropped silently; this is best-effort normalization, not a strict parser.
type ParseFunc func(tool, path, stdout, stderr string) []core.Finding

// toolsByExt is the static lookup table from file extension to the ordered
// linter set. Unmapped extensions yield an empty set, which is not an error.
var toolsByExt = map[string][]Tool{
	".py": {
		{Name: "pylint", Command: "pylint", Args: []string{"--output-format=text", "--score=no"}, Parse: ParsePylint},
		{Name: "flake8", Command: "flake8", Args: nil, Parse: ParseFlake8},
		{Name: "black", Command: "black", Args: []string{"--check", "--quiet"}, Parse: ParseBlack},
	},
	".js":  {eslintTool},
	".jsx": {eslintTool},
	".ts":  {eslintTool},
	".tsx": {eslintTool},
	".go": {
		{Name: "go vet", Command: "go", Args: []string{"vet"}, Parse: ParseGoVet},
		{Name: "gofmt", Command: "gofmt", Args: []string{"-l"}, Parse: ParseGofmt},
	},
}

var eslintTool = Tool{
	Name:    "eslint",
	Command: "eslint",
	Args:    []string{"--format", "unix", "--no-color"},
	Parse:   ParseESLint,
}

// ToolsFor returns the ordered linter set applicable to a path.
func ToolsFor(path string) []Tool {
	return toolsByExt[strings.ToLower(filepath.Ext(path))]
}

// SupportedExtensions lists the extensions with at least one mapped tool,
// sorted for stable display.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(toolsByExt))
	for ext := range toolsByExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
