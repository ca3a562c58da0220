package linter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sanix-darker/reviewbot/internal/core"
)

// Output grammars of the supported tools. Each pattern captures the line
// number and message; anything that does not match is skipped.
var (
	// pylint text format: "a.py:12:0: W0612: Unused variable 'x' (unused-variable)"
	pylintPattern = regexp.MustCompile(`^(.+?):(\d+):\d+:\s*([CRWEF]\d{4}):\s*(.+)$`)

	// flake8: "a.py:1:1: F401 'os' imported but unused"
	flake8Pattern = regexp.MustCompile(`^(.+?):(\d+):\d+:\s*([A-Z]\d+)\s+(.+)$`)

	// eslint unix format: "a.js:3:5: Unexpected console statement. [Warning/no-console]"
	eslintPattern = regexp.MustCompile(`^(.+?):(\d+):\d+:\s*(.+?)\s*\[(Error|Warning)/([^\]]+)\]$`)

	// go vet: "a.go:5:2: unreachable code"
	goVetPattern = regexp.MustCompile(`^(.+?):(\d+)(?::\d+)?:\s*(.+)$`)
)

// ParsePylint extracts findings from pylint's text output. Message codes map
// onto severities: E/F are errors, W warnings, C/R informational.
func ParsePylint(tool, path, stdout, stderr string) []core.Finding {
	var findings []core.Finding
	for _, line := range strings.Split(stdout, "\n") {
		m := pylintPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		sev := core.SeverityInfo
		switch m[3][0] {
		case 'E', 'F':
			sev = core.SeverityError
		case 'W':
			sev = core.SeverityWarning
		}
		findings = append(findings, core.Finding{
			Source:   core.SourceLinter,
			Tool:     tool,
			Line:     lineNo,
			Message:  m[3] + ": " + m[4],
			Severity: sev,
		})
	}
	return findings
}

// ParseFlake8 extracts findings from flake8 output. E9xx and Fxxx codes are
// syntax-level problems and map to error severity; everything else is a
// warning.
func ParseFlake8(tool, path, stdout, stderr string) []core.Finding {
	var findings []core.Finding
	for _, line := range strings.Split(stdout, "\n") {
		m := flake8Pattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		sev := core.SeverityWarning
		if strings.HasPrefix(m[3], "E9") || strings.HasPrefix(m[3], "F") {
			sev = core.SeverityError
		}
		findings = append(findings, core.Finding{
			Source:   core.SourceLinter,
			Tool:     tool,
			Line:     lineNo,
			Message:  m[3] + " " + m[4],
			Severity: sev,
		})
	}
	return findings
}

// ParseBlack handles black --check, which reports per file rather than per
// line: "would reformat a.py" on stderr means the file needs formatting.
func ParseBlack(tool, path, stdout, stderr string) []core.Finding {
	if !strings.Contains(stderr, "would reformat") && !strings.Contains(stdout, "would reformat") {
		return nil
	}
	return []core.Finding{{
		Source:   core.SourceLinter,
		Tool:     tool,
		Message:  "file is not formatted (black --check would reformat it)",
		Severity: core.SeverityWarning,
	}}
}

// ParseESLint extracts findings from eslint's unix formatter output.
func ParseESLint(tool, path, stdout, stderr string) []core.Finding {
	var findings []core.Finding
	for _, line := range strings.Split(stdout, "\n") {
		m := eslintPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		sev := core.SeverityWarning
		if m[4] == "Error" {
			sev = core.SeverityError
		}
		findings = append(findings, core.Finding{
			Source:   core.SourceLinter,
			Tool:     tool,
			Line:     lineNo,
			Message:  m[3] + " (" + m[5] + ")",
			Severity: sev,
		})
	}
	return findings
}

// ParseGoVet extracts findings from go vet, which reports on stderr.
func ParseGoVet(tool, path, stdout, stderr string) []core.Finding {
	var findings []core.Finding
	for _, line := range strings.Split(stderr, "\n") {
		trimmed := strings.TrimSpace(line)
		// vet prefixes diagnostics with the package clause ("# pkg") and
		// exit status lines; only file:line diagnostics are findings.
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "exit status") {
			continue
		}
		m := goVetPattern.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		findings = append(findings, core.Finding{
			Source:   core.SourceLinter,
			Tool:     tool,
			Line:     lineNo,
			Message:  m[3],
			Severity: core.SeverityWarning,
		})
	}
	return findings
}

// ParseGofmt handles gofmt -l, which prints the file name when the file is
// not gofmt-formatted and nothing otherwise.
func ParseGofmt(tool, path, stdout, stderr string) []core.Finding {
	if strings.TrimSpace(stdout) == "" {
		return nil
	}
	return []core.Finding{{
		Source:   core.SourceLinter,
		Tool:     tool,
		Message:  "file is not gofmt-formatted",
		Severity: core.SeverityWarning,
	}}
}
