package ui

import (
	"context"
	"io"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/log"

	"github.com/crunch/tmplgen/internal/catalog"
	"github.com/crunch/tmplgen/internal/draft"
)

const (
	// catalogTimeout bounds the initial catalog load.
	catalogTimeout = 10 * time.Second

	// panelWidth is the width of the side panel in wide terminals.
	panelWidth = 30

	// sideBySideMin is the terminal width from which the panel sits next to
	// the editor rather than below it.
	sideBySideMin = 100
)

// AppController is the interface the TUI uses to drive submissions. It is
// satisfied by *app.App; tests use a stub.
type AppController interface {
	// Submit starts a submission and returns the command performing the
	// remote call, or nil when the submission was dropped.
	Submit() tea.Cmd
	// Resolve applies a submission outcome and reports whether msg was one.
	Resolve(msg tea.Msg) bool
	// State returns the editable template state.
	State() *draft.State
}

// CatalogSource lists the placeholders available to templates.
// *catalog.Catalog satisfies it.
type CatalogSource interface {
	Parameters(ctx context.Context) ([]catalog.Entry, error)
}

// AppModelOptions holds configuration passed to NewAppModel.
type AppModelOptions struct {
	// Width and Height are the initial terminal size. Zero uses 80x24.
	Width  int
	Height int

	// Catalog is the optional placeholder catalog. When nil the panel shows
	// no parameters and insertion is disabled.
	Catalog CatalogSource

	// Logger receives UI diagnostics such as catalog failures.
	Logger *log.Logger
}

// catalogLoadedMsg carries the result of the initial catalog load.
type catalogLoadedMsg struct {
	entries []catalog.Entry
	err     error
}

// AppModel is the root Bubble Tea model. It binds the editor fields to the
// draft state, forwards the submit key to the app layer and renders the
// status line and busy indicator from the state.
//
// Layout:
//
//	┌─ header ─────────────────────────────┬─ panel ──────┐
//	│ Description [textinput]              │ Parameters   │
//	│ Content     [textarea | preview]     │ Outline      │
//	├─ status: indicator + status message ─┴──────────────┤
//	└─ help ──────────────────────────────────────────────┘
type AppModel struct {
	appCtrl   AppController
	editor    *EditorComponent
	indicator *BusyIndicator
	panel     *ParamPanel
	help      help.Model
	keys      keyMap
	catalog   CatalogSource
	logger    *log.Logger

	// previewing replaces the content editor with the rendered preview.
	previewing bool
	// preview caches the rendering of previewSrc.
	preview    string
	previewSrc string
	previewErr error

	// syncedDesc and syncedContent are the editor values last written to or
	// loaded from the state. The widgets sanitize what they are given, so
	// only a value that moved away from these counts as an edit.
	syncedDesc    string
	syncedContent string

	width  int
	height int
}

// NewAppModel creates the root model. The editor is pre-filled from the
// controller's current draft.
func NewAppModel(appCtrl AppController, opts AppModelOptions) *AppModel {
	width := opts.Width
	if width == 0 {
		width = 80
	}
	height := opts.Height
	if height == 0 {
		height = 24
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := &AppModel{
		appCtrl:   appCtrl,
		editor:    NewEditorComponent(width, 8),
		indicator: NewBusyIndicator(),
		panel:     &ParamPanel{},
		help:      help.New(),
		keys:      defaultKeyMap(),
		catalog:   opts.Catalog,
		logger:    logger,
		width:     width,
		height:    height,
	}

	d := appCtrl.State().CurrentDraft()
	m.editor.SetDescription(d.Description)
	m.editor.SetContent(d.Content)
	m.markSynced()
	m.panel.SetOutline(draft.ParseOutline(d.Content))
	m.layout()
	return m
}

// --------------------------------------------------------------------------
// tea.Model interface
// --------------------------------------------------------------------------

// Init implements tea.Model. Starts the cursor blink and the catalog load.
func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(m.editor.Init(), m.loadCatalog())
}

// Update implements tea.Model.
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Submission outcomes first: the controller owns their semantics.
	if m.appCtrl.Resolve(msg) {
		return m, m.afterResolve()
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case indicatorTickMsg:
		return m, m.indicator.Update(msg)

	case catalogLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("catalog unavailable", "err", msg.err)
		} else {
			m.logger.Debug("catalog loaded", "parameters", len(msg.entries))
		}
		m.panel.SetEntries(msg.entries, msg.err)
		return m, nil

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}

	// Anything else (cursor blink etc.) goes to the editor.
	return m, m.editor.Update(msg)
}

// View implements tea.Model.
func (m *AppModel) View() tea.View {
	theme := GetTheme()

	header := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Message Template Editor")
	if title := m.panel.outline.Title; title != "" {
		header += StyleMuted(theme).Render("  " + title)
	}

	body := m.editor.View()
	if m.previewing {
		body = lipgloss.JoinVertical(lipgloss.Left,
			StyleLabel(theme, false).Render("Description"),
			StylePanel(theme, false).Width(m.editorWidth()).Render(m.editor.Description()),
			StyleLabel(theme, true).Render("Preview"),
			StylePanel(theme, true).Width(m.editorWidth()).Render(m.previewView()),
		)
	}

	if m.width >= sideBySideMin {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", m.panel.View())
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, body, m.panel.View())
	}

	v := tea.NewView(lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		CreateSeparator(m.width, "─", theme.MutedBorder),
		m.renderStatus(),
		m.help.View(m.keys),
	))
	v.AltScreen = true
	return v
}

// --------------------------------------------------------------------------
// Key handling
// --------------------------------------------------------------------------

func (m *AppModel) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.NextField):
		return m.editor.FocusNext(1)

	case key.Matches(msg, m.keys.PrevField):
		return m.editor.FocusNext(-1)

	case key.Matches(msg, m.keys.Preview):
		m.previewing = !m.previewing
		return nil

	case key.Matches(msg, m.keys.NextParam):
		m.panel.Next()
		return nil

	case key.Matches(msg, m.keys.InsertParam):
		entry, ok := m.panel.Selected()
		if !ok {
			return nil
		}
		cmd := m.editor.InsertContent(draft.Placeholder(entry.Name))
		m.syncState()
		return cmd
	}

	// Editing keys always reach the focused field, pending or not.
	cmd := m.editor.Update(msg)
	m.syncState()
	return cmd
}

// submit hands the current fields to the controller. A dropped submit
// returns nil and leaves the indicator as it is.
func (m *AppModel) submit() tea.Cmd {
	m.syncState()
	cmd := m.appCtrl.Submit()
	if cmd == nil {
		return nil
	}
	return tea.Batch(cmd, m.indicator.Start())
}

// afterResolve brings the widgets in line with the state after an outcome.
func (m *AppModel) afterResolve() tea.Cmd {
	state := m.appCtrl.State()
	if !state.Pending() {
		m.indicator.Stop()
	}
	if state.Phase() == draft.PhaseSucceeded {
		content := state.CurrentDraft().Content
		m.editor.SetContent(content)
		m.syncedContent = m.editor.Content()
		m.panel.SetOutline(draft.ParseOutline(content))
	}
	return nil
}

// syncState copies edited editor fields into the draft state. A field the
// user has not changed since it was loaded is left alone, so the state keeps
// the exact bytes it was given.
func (m *AppModel) syncState() {
	state := m.appCtrl.State()
	if desc := m.editor.Description(); desc != m.syncedDesc {
		state.SetDescription(desc)
		m.syncedDesc = desc
	}
	if content := m.editor.Content(); content != m.syncedContent {
		state.SetContent(content)
		m.syncedContent = content
		m.panel.SetOutline(draft.ParseOutline(content))
	}
}

func (m *AppModel) markSynced() {
	m.syncedDesc = m.editor.Description()
	m.syncedContent = m.editor.Content()
}

// --------------------------------------------------------------------------
// Rendering helpers
// --------------------------------------------------------------------------

func (m *AppModel) renderStatus() string {
	theme := GetTheme()
	state := m.appCtrl.State()
	status := state.StatusMessage()

	var line string
	switch state.Phase() {
	case draft.PhasePending:
		line = m.indicator.View() + " " + lipgloss.NewStyle().Foreground(theme.Text).Italic(true).Render(status)
	case draft.PhaseFailed:
		line = StyleError(theme).Render(status)
	case draft.PhaseSucceeded:
		line = StyleSuccess(theme).Render(status)
	default:
		line = StyleMuted(theme).Render("Ready")
	}
	return line
}

func (m *AppModel) previewView() string {
	content := m.editor.Content()
	if content != m.previewSrc || (m.preview == "" && m.previewErr == nil) {
		m.preview, m.previewErr = RenderPreview(content, m.editorWidth()-4)
		m.previewSrc = content
		if m.previewErr != nil {
			m.logger.Warn("preview failed", "err", m.previewErr)
		}
	}
	if m.previewErr != nil {
		return StyleError(GetTheme()).Render(m.previewErr.Error())
	}
	if m.preview == "" {
		return StyleMuted(GetTheme()).Render("(empty)")
	}
	return m.preview
}

// editorWidth is the width left for the editor after the side panel.
func (m *AppModel) editorWidth() int {
	if m.width >= sideBySideMin {
		return m.width - panelWidth - 1
	}
	return m.width
}

// layout distributes the terminal size between the children.
func (m *AppModel) layout() {
	// header, two labels, description box, separator, status, help and the
	// content box border.
	const chrome = 10
	contentHeight := m.height - chrome
	if m.width < sideBySideMin {
		contentHeight -= 8 // panel below the editor
	}
	m.editor.SetSize(m.editorWidth(), contentHeight)
	m.panel.width = panelWidth
	if m.width < sideBySideMin {
		m.panel.width = m.width
	}
}

func (m *AppModel) loadCatalog() tea.Cmd {
	if m.catalog == nil {
		return nil
	}
	src := m.catalog
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), catalogTimeout)
		defer cancel()
		entries, err := src.Parameters(ctx)
		return catalogLoadedMsg{entries: entries, err: err}
	}
}
