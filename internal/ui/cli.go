package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"charm.land/lipgloss/v2"
	"golang.org/x/term"
)

// CLI renders output for non-interactive runs. Results go to out; progress
// and errors go to errOut so that out can be piped.
type CLI struct {
	out    io.Writer
	errOut io.Writer
	quiet  bool
	width  int
}

// NewCLI creates a CLI writing to out and errOut. quiet disables the
// progress animation.
func NewCLI(out, errOut io.Writer, quiet bool) *CLI {
	return &CLI{
		out:    out,
		errOut: errOut,
		quiet:  quiet,
		width:  TerminalWidth(),
	}
}

// TerminalWidth returns the width of stdout, or 80 when it is not a
// terminal.
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// ShowSpinner runs action while animating a progress line on errOut. The
// animation only runs when errOut is a terminal.
func (c *CLI) ShowSpinner(message string, action func() error) error {
	if c.quiet || !isTerminal(c.errOut) {
		return action()
	}

	s := newLineSpinner(c.errOut, message)
	s.Start()
	err := action()
	s.Stop()
	return err
}

// DisplayContent writes generated content. When preview is set the HTML is
// rendered for the terminal instead of printed raw.
func (c *CLI) DisplayContent(content string, preview bool) error {
	if preview {
		rendered, err := RenderPreview(content, c.width)
		if err != nil {
			return err
		}
		content = rendered
	}
	_, err := fmt.Fprintln(c.out, content)
	return err
}

// DisplayError writes err in the error style.
func (c *CLI) DisplayError(err error) {
	fmt.Fprintln(c.errOut, StyleError(GetTheme()).Render("Error: "+err.Error()))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// lineSpinner draws the KITT animation on a single terminal line from its
// own goroutine. It is used outside Bubble Tea, where no Update loop exists
// to drive BusyIndicator.
type lineSpinner struct {
	w       io.Writer
	message string
	frames  []string
	done    chan struct{}
	exited  chan struct{}
	once    sync.Once
}

func newLineSpinner(w io.Writer, message string) *lineSpinner {
	return &lineSpinner{
		w:       w,
		message: message,
		frames:  knightRiderFrames(),
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
}

func (s *lineSpinner) Start() {
	go s.run()
}

// Stop halts the animation and waits until the line is cleared.
func (s *lineSpinner) Stop() {
	s.once.Do(func() { close(s.done) })
	<-s.exited
}

func (s *lineSpinner) run() {
	defer close(s.exited)

	messageStyle := lipgloss.NewStyle().Foreground(GetTheme().Text).Italic(true)
	ticker := time.NewTicker(indicatorFPS)
	defer ticker.Stop()

	var frame int
	for {
		select {
		case <-s.done:
			fmt.Fprint(s.w, "\r\033[K")
			return
		case <-ticker.C:
			fmt.Fprintf(s.w, "\r %s %s", s.frames[frame%len(s.frames)], messageStyle.Render(s.message))
			frame++
		}
	}
}
