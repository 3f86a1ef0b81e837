package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/crunch/tmplgen/internal/catalog"
	"github.com/crunch/tmplgen/internal/draft"
)

// maxPanelRows bounds how many catalog entries are listed at once.
const maxPanelRows = 12

// ParamPanel lists catalog placeholders and the outline of the current
// template. The selected entry is what ctrl+o inserts.
type ParamPanel struct {
	entries  []catalog.Entry
	selected int
	loadErr  error
	loaded   bool
	outline  draft.Outline
	width    int
}

// SetEntries replaces the catalog listing.
func (p *ParamPanel) SetEntries(entries []catalog.Entry, err error) {
	p.entries = entries
	p.loadErr = err
	p.loaded = true
	p.selected = 0
}

// SetOutline updates the outline shown beneath the catalog.
func (p *ParamPanel) SetOutline(o draft.Outline) {
	p.outline = o
}

// Next moves the selection forward, wrapping around.
func (p *ParamPanel) Next() {
	if len(p.entries) == 0 {
		return
	}
	p.selected = (p.selected + 1) % len(p.entries)
}

// Selected returns the selected entry, if any.
func (p *ParamPanel) Selected() (catalog.Entry, bool) {
	if len(p.entries) == 0 {
		return catalog.Entry{}, false
	}
	return p.entries[p.selected], true
}

// Unknown returns outline placeholders missing from the catalog.
func (p *ParamPanel) Unknown() []string {
	return p.outline.Unknown(catalog.Names(p.entries))
}

// View renders the panel.
func (p *ParamPanel) View() string {
	theme := GetTheme()
	muted := StyleMuted(theme)

	var lines []string
	lines = append(lines, StyleLabel(theme, false).Render("Parameters"))

	switch {
	case !p.loaded:
		lines = append(lines, muted.Render("no catalog"))
	case p.loadErr != nil:
		lines = append(lines, StyleError(theme).Render("catalog unavailable"))
	case len(p.entries) == 0:
		lines = append(lines, muted.Render("(none)"))
	default:
		start := 0
		if p.selected >= maxPanelRows {
			start = p.selected - maxPanelRows + 1
		}
		end := min(start+maxPanelRows, len(p.entries))
		for i := start; i < end; i++ {
			name := p.entries[i].Name
			if i == p.selected {
				lines = append(lines, lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("› "+name))
			} else {
				lines = append(lines, "  "+name)
			}
		}
		if e, ok := p.Selected(); ok && e.Description != "" {
			lines = append(lines, muted.Italic(true).Render(e.Description))
		}
	}

	lines = append(lines, "", StyleLabel(theme, false).Render("Outline"))
	if p.outline.Title != "" {
		lines = append(lines, p.outline.Title)
	}
	if n := len(p.outline.Placeholders); n > 0 {
		lines = append(lines, muted.Render(fmt.Sprintf("%d placeholder(s)", n)))
	}
	if unknown := p.Unknown(); len(unknown) > 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Warning).
			Render("unknown: "+strings.Join(unknown, ", ")))
	}

	return StylePanel(theme, false).Width(p.width).Render(strings.Join(lines, "\n"))
}
