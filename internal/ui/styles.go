package ui

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
)

func uintPtr(u uint) *uint { return &u }

func boolPtr(b bool) *bool { return &b }

func stringPtr(s string) *string { return &s }

// GetMarkdownRenderer returns a glamour renderer themed for the current
// terminal background and wrapped at width.
func GetMarkdownRenderer(width int) (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithStyles(markdownStyleConfig()),
		glamour.WithWordWrap(width),
	)
}

// colorScheme holds resolved color values for markdown rendering.
type colorScheme struct {
	text    string
	muted   string
	heading string
	emph    string
	strong  string
	link    string
	code    string
}

func resolveColorScheme() colorScheme {
	if IsDarkBackground() {
		return colorScheme{
			text: "#cdd6f4", muted: "#a6adc8",
			heading: "#89dceb", emph: "#f9e2af",
			strong: "#cdd6f4", link: "#89b4fa",
			code: "#bac2de",
		}
	}
	return colorScheme{
		text: "#4c4f69", muted: "#6c6f85",
		heading: "#04a5e5", emph: "#df8e1d",
		strong: "#4c4f69", link: "#1e66f5",
		code: "#5c5f77",
	}
}

func markdownStyleConfig() ansi.StyleConfig {
	cs := resolveColorScheme()

	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: &cs.text},
			Margin:         uintPtr(0),
		},
		BlockQuote: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color:  &cs.muted,
				Italic: boolPtr(true),
				Prefix: "┃ ",
			},
			Indent: uintPtr(1),
		},
		List: ansi.StyleList{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{Color: &cs.text},
			},
		},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockSuffix: "\n",
				Color:       &cs.heading,
				Bold:        boolPtr(true),
			},
		},
		H1: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "# ", Color: &cs.heading, Bold: boolPtr(true)},
		},
		H2: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "## ", Color: &cs.heading, Bold: boolPtr(true)},
		},
		H3: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "### ", Color: &cs.heading},
		},
		Emph:   ansi.StylePrimitive{Color: &cs.emph, Italic: boolPtr(true)},
		Strong: ansi.StylePrimitive{Color: &cs.strong, Bold: boolPtr(true)},

		HorizontalRule: ansi.StylePrimitive{
			Color:  &cs.muted,
			Format: "\n────────\n",
		},
		Item:        ansi.StylePrimitive{BlockPrefix: "• "},
		Enumeration: ansi.StylePrimitive{BlockPrefix: ". "},
		Link:        ansi.StylePrimitive{Color: &cs.link, Underline: boolPtr(true)},
		LinkText:    ansi.StylePrimitive{Color: &cs.link, Bold: boolPtr(true)},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: &cs.code, Prefix: " ", Suffix: " "},
		},
		Table: ansi.StyleTable{
			CenterSeparator: stringPtr("┼"),
			ColumnSeparator: stringPtr("│"),
			RowSeparator:    stringPtr("─"),
		},
		Text: ansi.StylePrimitive{Color: &cs.text},

		Paragraph: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: &cs.text},
		},
	}
}
