package ui

import (
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// field identifies one of the two editable inputs.
type field int

const (
	fieldDescription field = iota
	fieldContent
	numFields
)

// EditorComponent holds the description input and the content editor. It
// only knows about text; the parent copies values into the draft state.
type EditorComponent struct {
	description textinput.Model
	content     textarea.Model
	focus       field
	width       int
}

// NewEditorComponent creates an editor of the given outer width whose
// content area is contentHeight rows tall. The description field starts
// focused.
func NewEditorComponent(width, contentHeight int) *EditorComponent {
	ti := textinput.New()
	ti.Placeholder = "Describe the message template…"
	ti.Prompt = ""
	ti.CharLimit = 0 // no limit

	ta := textarea.New()
	ta.Placeholder = "<h2>Title</h2>\n<p>Template body with [[placeholders]]</p>"
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0

	// Enter inserts a newline; alt+enter and ctrl+j are kept as aliases.
	ta.KeyMap.InsertNewline = key.NewBinding(
		key.WithKeys("enter", "ctrl+j", "alt+enter"),
		key.WithHelp("enter", "insert newline"),
	)

	styles := ta.Styles()
	styles.Focused.Base = lipgloss.NewStyle()
	styles.Focused.CursorLine = lipgloss.NewStyle()
	styles.Focused.Prompt = lipgloss.NewStyle()
	styles.Focused.Placeholder = lipgloss.NewStyle().Foreground(GetTheme().VeryMuted)
	styles.Blurred.Placeholder = lipgloss.NewStyle().Foreground(GetTheme().VeryMuted)
	ta.SetStyles(styles)

	e := &EditorComponent{
		description: ti,
		content:     ta,
	}
	e.SetSize(width, contentHeight)
	e.description.Focus()
	return e
}

// Init starts the cursor blink.
func (e *EditorComponent) Init() tea.Cmd {
	return textarea.Blink
}

// SetSize resizes both fields to fit within width columns.
func (e *EditorComponent) SetSize(width, contentHeight int) {
	e.width = width
	inner := max(width-4, 10) // border and padding
	e.description.SetWidth(inner)
	e.content.SetWidth(inner)
	e.content.SetHeight(max(contentHeight, 3))
}

// Focused returns the field that receives key input.
func (e *EditorComponent) Focused() field {
	return e.focus
}

// FocusNext moves focus forward (delta 1) or backward (delta -1).
func (e *EditorComponent) FocusNext(delta int) tea.Cmd {
	next := (int(e.focus) + delta + int(numFields)) % int(numFields)
	return e.setFocus(field(next))
}

func (e *EditorComponent) setFocus(f field) tea.Cmd {
	e.focus = f
	if f == fieldDescription {
		e.content.Blur()
		return e.description.Focus()
	}
	e.description.Blur()
	return e.content.Focus()
}

// Update forwards msg to the focused field.
func (e *EditorComponent) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch e.focus {
	case fieldDescription:
		e.description, cmd = e.description.Update(msg)
	case fieldContent:
		e.content, cmd = e.content.Update(msg)
	}
	return cmd
}

// Description returns the description text.
func (e *EditorComponent) Description() string {
	return e.description.Value()
}

// Content returns the template content text.
func (e *EditorComponent) Content() string {
	return e.content.Value()
}

// SetDescription replaces the description text.
func (e *EditorComponent) SetDescription(s string) {
	e.description.SetValue(s)
}

// SetContent replaces the content text and moves the cursor to the end.
func (e *EditorComponent) SetContent(s string) {
	e.content.SetValue(s)
	e.content.CursorEnd()
}

// InsertContent inserts s at the content cursor and focuses the content
// field.
func (e *EditorComponent) InsertContent(s string) tea.Cmd {
	cmd := e.setFocus(fieldContent)
	e.content.InsertString(s)
	return cmd
}

// View renders both fields with labels.
func (e *EditorComponent) View() string {
	theme := GetTheme()
	descFocused := e.focus == fieldDescription
	contentFocused := e.focus == fieldContent

	desc := lipgloss.JoinVertical(lipgloss.Left,
		StyleLabel(theme, descFocused).Render("Description"),
		StylePanel(theme, descFocused).Width(e.width).Render(e.description.View()),
	)
	content := lipgloss.JoinVertical(lipgloss.Left,
		StyleLabel(theme, contentFocused).Render("Content"),
		StylePanel(theme, contentFocused).Width(e.width).Render(e.content.View()),
	)
	return lipgloss.JoinVertical(lipgloss.Left, desc, content)
}
