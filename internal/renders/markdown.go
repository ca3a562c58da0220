// Package renders formats composed review output for terminal display.
package renders

import (
	"os"

	markdown "github.com/MichaelMure/go-term-markdown"
	"golang.org/x/term"
)

// RenderMarkdown renders markdown for the terminal. Non-TTY output (CI logs,
// pipes) gets the raw markdown unchanged so it stays grep-able.
func RenderMarkdown(content string) string {
	if content == "" {
		return content
	}

	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return content
	}

	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		width = 80
	}

	return string(markdown.Render(content, width, 0))
}
