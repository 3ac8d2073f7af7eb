package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// markdownRenderer renders markdown content in the terminal.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
}

func newMarkdownRenderer() (*markdownRenderer, error) {
	// Word-wrap to the terminal, capped for readability.
	termWidth := 80
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		termWidth = width - 4
		if termWidth > 120 {
			termWidth = 120
		}
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(termWidth),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}

	return &markdownRenderer{renderer: renderer}, nil
}

func (mr *markdownRenderer) renderAndPrint(content string) error {
	rendered, err := mr.renderer.Render(content)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	fmt.Print(rendered)
	return nil
}
