package ui

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// RenderPreview converts template HTML to styled terminal text: the HTML is
// turned into Markdown and rendered with the themed glamour renderer.
func RenderPreview(html string, width int) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	markdown, err := md.NewConverter("", true, nil).ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert template to markdown: %w", err)
	}

	r, err := GetMarkdownRenderer(max(width, 20))
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	rendered, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimRight(rendered, "\n"), nil
}
