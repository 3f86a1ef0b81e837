package app

import (
	"context"
	"errors"
	"io"
	"sync"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/log"

	"github.com/crunch/tmplgen/internal/draft"
	"github.com/crunch/tmplgen/internal/generation"
)

const (
	// StatusPending is shown while a request is in flight.
	StatusPending = "Request sent, awaiting response…"

	// StatusReceived is shown after new content has been applied.
	StatusReceived = "Response received"

	// failedPrefix precedes the failure message in the status line.
	failedPrefix = "Generation failed: "
)

// ErrBusy is returned by RunOnce when a submission is already in flight.
var ErrBusy = errors.New("submission already in progress")

// App is the submission orchestrator. It turns one submit action into exactly
// one in-flight generation request and reconciles the outcome back into the
// draft state.
//
// Submit and Resolve must be called from the goroutine that owns the state:
// the Bubble Tea Update loop in interactive mode, the caller of RunOnce
// otherwise. The remote call itself runs inside the returned tea.Cmd and only
// touches its own copy of the request, so the state needs no locking.
//
// App satisfies the ui.AppController interface defined in internal/ui/model.go.
type App struct {
	opts   Options
	state  *draft.State
	logger *log.Logger

	// mu protects closed and dispatched, which are also read outside the
	// Update loop (Close, diagnostics).
	mu         sync.Mutex
	closed     bool
	dispatched int

	// rootCtx/rootCancel bound every request to the lifetime of the app.
	rootCtx    context.Context
	rootCancel context.CancelFunc
}

// New creates an App with the provided options.
func New(opts Options) *App {
	state := opts.State
	if state == nil {
		state = draft.NewState()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	return &App{
		opts:       opts,
		state:      state,
		logger:     logger,
		rootCtx:    rootCtx,
		rootCancel: rootCancel,
	}
}

// State returns the editable template state owned by the app.
func (a *App) State() *draft.State {
	return a.state
}

// Submit starts a submission of the current draft. It returns nil, and
// changes nothing, when a submission is already pending or the app is
// closed; a re-entrant submit is dropped rather than queued.
//
// Otherwise the phase becomes Pending, the status line reports that the
// request was sent, and exactly one generation.Request is built from the
// current draft. The returned command performs the remote call and yields a
// SubmissionSucceededEvent or SubmissionFailedEvent, which the caller feeds
// back through Resolve.
//
// Satisfies ui.AppController.
func (a *App) Submit() tea.Cmd {
	req, ok := a.begin()
	if !ok {
		return nil
	}

	gen := a.opts.Generator
	ctx := a.rootCtx
	return func() tea.Msg {
		return generate(ctx, gen, req)
	}
}

// Resolve applies a submission outcome to the draft state. It reports
// whether msg was a submission outcome; other messages are ignored.
//
// Satisfies ui.AppController.
func (a *App) Resolve(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case SubmissionSucceededEvent:
		a.state.Succeed(msg.Content, StatusReceived)
		a.logger.Debug("generation succeeded", "bytes", len(msg.Content))
		return true
	case SubmissionFailedEvent:
		a.state.Fail(failedPrefix + errorText(msg.Err))
		a.logger.Error("generation failed", "err", msg.Err)
		return true
	default:
		return false
	}
}

// Dispatched returns how many requests have been built since the app was
// created.
func (a *App) Dispatched() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dispatched
}

// --------------------------------------------------------------------------
// Non-interactive execution
// --------------------------------------------------------------------------

// RunOnce submits the current draft and waits for the outcome, applying it
// to the state exactly as the interactive path does. The returned error is
// the remote failure, if any; the state carries the outcome either way.
func (a *App) RunOnce(ctx context.Context) error {
	req, ok := a.begin()
	if !ok {
		return ErrBusy
	}

	stepCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(a.rootCtx, cancel)
	defer stop()

	msg := generate(stepCtx, a.opts.Generator, req)
	a.Resolve(msg)
	if failed, ok := msg.(SubmissionFailedEvent); ok {
		return failed.Err
	}
	return nil
}

// --------------------------------------------------------------------------
// Close
// --------------------------------------------------------------------------

// Close ends the session. Any in-flight request is cancelled and later
// submits are dropped. Safe to call more than once.
func (a *App) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()

	a.rootCancel()
}

// --------------------------------------------------------------------------
// Internal
// --------------------------------------------------------------------------

// begin performs the Idle/Succeeded/Failed → Pending transition and builds
// the request snapshot.
func (a *App) begin() (generation.Request, bool) {
	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed || a.state.Pending() {
		a.logger.Debug("submit ignored", "closed", closed, "phase", a.state.Phase())
		return generation.Request{}, false
	}

	a.state.Begin(StatusPending)
	d := a.state.CurrentDraft()
	req := generation.Request{Description: d.Description, Content: d.Content}

	a.mu.Lock()
	a.dispatched++
	a.mu.Unlock()

	a.logger.Debug("submitting draft", "description", len(req.Description), "content", len(req.Content))
	return req, true
}

func generate(ctx context.Context, gen Generator, req generation.Request) tea.Msg {
	if gen == nil {
		return SubmissionFailedEvent{Err: errors.New("no generator configured")}
	}
	result, err := gen.Generate(ctx, req)
	if err != nil {
		return SubmissionFailedEvent{Err: err}
	}
	return SubmissionSucceededEvent{Content: result.Content}
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
