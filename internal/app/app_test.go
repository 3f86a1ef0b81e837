package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/crunch/tmplgen/internal/draft"
	"github.com/crunch/tmplgen/internal/generation"
)

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// stubGenerator answers successive calls with the functions in fns. When fns
// is exhausted it echoes the request content back.
type stubGenerator struct {
	mu       sync.Mutex
	fns      []func(ctx context.Context, req generation.Request) (generation.Result, error)
	requests []generation.Request
	gate     chan struct{} // if non-nil, each call blocks until a value arrives
}

func (s *stubGenerator) Generate(ctx context.Context, req generation.Request) (generation.Result, error) {
	s.mu.Lock()
	idx := len(s.requests)
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return generation.Result{}, ctx.Err()
		}
	}

	if idx < len(s.fns) {
		return s.fns[idx](ctx, req)
	}
	return generation.Result{Content: req.Content}, nil
}

func (s *stubGenerator) calls() []generation.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]generation.Request(nil), s.requests...)
}

func succeedWith(content string) func(context.Context, generation.Request) (generation.Result, error) {
	return func(context.Context, generation.Request) (generation.Result, error) {
		return generation.Result{Content: content}, nil
	}
}

func failWith(message string) func(context.Context, generation.Request) (generation.Result, error) {
	return func(context.Context, generation.Request) (generation.Result, error) {
		return generation.Result{}, &generation.RemoteGenerationFailure{Message: message}
	}
}

// newTestApp creates an App over a state pre-filled with d.
func newTestApp(gen Generator, d draft.Draft) *App {
	state := draft.NewState()
	state.Load(d)
	return New(Options{Generator: gen, State: state})
}

// submitAndResolve runs one full cycle the way the Update loop would.
func submitAndResolve(t *testing.T, a *App) {
	t.Helper()
	cmd := a.Submit()
	if cmd == nil {
		t.Fatal("expected Submit to return a command")
	}
	if !a.Resolve(cmd()) {
		t.Fatal("command result was not a submission outcome")
	}
}

// --------------------------------------------------------------------------
// Submit / Resolve
// --------------------------------------------------------------------------

// TestSubmit_success covers a round trip that rewrites the content.
func TestSubmit_success(t *testing.T) {
	gen := &stubGenerator{fns: []func(context.Context, generation.Request) (generation.Result, error){
		succeedWith("Hello there!"),
	}}
	a := newTestApp(gen, draft.Draft{Description: "greeting", Content: "Hi"})
	defer a.Close()

	cmd := a.Submit()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if got := a.State().Phase(); got != draft.PhasePending {
		t.Fatalf("expected PhasePending after Submit, got %v", got)
	}
	if got := a.State().StatusMessage(); got != StatusPending {
		t.Fatalf("unexpected pending status %q", got)
	}

	a.Resolve(cmd())

	want := draft.Draft{Description: "greeting", Content: "Hello there!"}
	if got := a.State().CurrentDraft(); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if got := a.State().Phase(); got != draft.PhaseSucceeded {
		t.Fatalf("expected PhaseSucceeded, got %v", got)
	}
	if got := a.State().StatusMessage(); got != StatusReceived {
		t.Fatalf("unexpected status %q", got)
	}

	calls := gen.calls()
	if len(calls) != 1 || calls[0] != (generation.Request{Description: "greeting", Content: "Hi"}) {
		t.Fatalf("unexpected requests %+v", calls)
	}
}

// TestSubmit_failureKeepsDraft verifies that a rejected request leaves the
// draft untouched and surfaces the message in the status line and the log.
func TestSubmit_failureKeepsDraft(t *testing.T) {
	var logs bytes.Buffer
	gen := &stubGenerator{fns: []func(context.Context, generation.Request) (generation.Result, error){
		failWith("timeout"),
	}}
	state := draft.NewState()
	state.Load(draft.Draft{Description: "x", Content: "y"})
	a := New(Options{Generator: gen, State: state, Logger: log.New(&logs)})
	defer a.Close()

	submitAndResolve(t, a)

	want := draft.Draft{Description: "x", Content: "y"}
	if got := a.State().CurrentDraft(); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if got := a.State().Phase(); got != draft.PhaseFailed {
		t.Fatalf("expected PhaseFailed, got %v", got)
	}
	if got := a.State().StatusMessage(); !strings.Contains(got, "timeout") {
		t.Fatalf("status %q does not contain the failure message", got)
	}
	if !strings.Contains(logs.String(), "timeout") {
		t.Fatalf("failure was not logged: %q", logs.String())
	}
}

// TestSubmit_whilePending verifies that a second submit during Pending is
// dropped: no command, no request, no status change.
func TestSubmit_whilePending(t *testing.T) {
	gen := &stubGenerator{gate: make(chan struct{})}
	a := newTestApp(gen, draft.Draft{Description: "d", Content: "c"})
	defer a.Close()

	first := a.Submit()
	if first == nil {
		t.Fatal("expected first Submit to return a command")
	}

	done := make(chan any, 1)
	go func() { done <- first() }()

	if !waitForCondition(2*time.Second, func() bool { return len(gen.calls()) == 1 }) {
		t.Fatal("first request did not reach the generator")
	}

	status := a.State().StatusMessage()
	for range 3 {
		if cmd := a.Submit(); cmd != nil {
			t.Fatal("expected Submit during Pending to return nil")
		}
	}
	if got := a.State().StatusMessage(); got != status {
		t.Fatalf("status changed on dropped submit: %q", got)
	}
	if got := a.Dispatched(); got != 1 {
		t.Fatalf("expected 1 dispatched request, got %d", got)
	}

	gen.gate <- struct{}{}
	a.Resolve(<-done)

	if got := len(gen.calls()); got != 1 {
		t.Fatalf("expected exactly one remote call, got %d", got)
	}
	if a.State().Pending() {
		t.Fatal("state still pending after resolve")
	}
}

// TestSubmit_afterOutcome verifies that Succeeded and Failed both accept a
// new submission.
func TestSubmit_afterOutcome(t *testing.T) {
	gen := &stubGenerator{fns: []func(context.Context, generation.Request) (generation.Result, error){
		succeedWith("v1"),
		failWith("boom"),
		succeedWith("v3"),
	}}
	a := newTestApp(gen, draft.Draft{Description: "d", Content: "v0"})
	defer a.Close()

	submitAndResolve(t, a)
	if a.State().Phase() != draft.PhaseSucceeded {
		t.Fatalf("expected PhaseSucceeded, got %v", a.State().Phase())
	}

	submitAndResolve(t, a)
	if a.State().Phase() != draft.PhaseFailed {
		t.Fatalf("expected PhaseFailed, got %v", a.State().Phase())
	}

	submitAndResolve(t, a)
	if got := a.State().CurrentDraft().Content; got != "v3" {
		t.Fatalf("expected content v3, got %q", got)
	}

	calls := gen.calls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(calls))
	}
	// The second request carries the content written by the first response.
	if calls[1].Content != "v1" || calls[2].Content != "v1" {
		t.Fatalf("unexpected request contents %+v", calls)
	}
}

// TestSubmit_requestIsSnapshot verifies that edits made while pending do not
// leak into the in-flight request but remain in the state.
func TestSubmit_requestIsSnapshot(t *testing.T) {
	gen := &stubGenerator{gate: make(chan struct{})}
	a := newTestApp(gen, draft.Draft{Description: "before", Content: "c"})
	defer a.Close()

	cmd := a.Submit()
	done := make(chan any, 1)
	go func() { done <- cmd() }()

	a.State().SetDescription("after")

	gen.gate <- struct{}{}
	a.Resolve(<-done)

	if got := gen.calls()[0].Description; got != "before" {
		t.Fatalf("request saw a later edit: %q", got)
	}
	if got := a.State().CurrentDraft().Description; got != "after" {
		t.Fatalf("edit made during pending was lost: %q", got)
	}
}

// TestSubmit_emptyDraft verifies that an empty draft is submitted as-is.
func TestSubmit_emptyDraft(t *testing.T) {
	gen := &stubGenerator{fns: []func(context.Context, generation.Request) (generation.Result, error){
		succeedWith("<p>generated</p>"),
	}}
	a := newTestApp(gen, draft.Draft{})
	defer a.Close()

	submitAndResolve(t, a)

	if got := gen.calls()[0]; got != (generation.Request{}) {
		t.Fatalf("expected empty request, got %+v", got)
	}
	if got := a.State().CurrentDraft().Content; got != "<p>generated</p>" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestResolve_ignoresOtherMessages(t *testing.T) {
	a := newTestApp(&stubGenerator{}, draft.Draft{})
	defer a.Close()

	if a.Resolve("not an outcome") {
		t.Fatal("expected Resolve to ignore unrelated messages")
	}
	if a.State().Phase() != draft.PhaseIdle {
		t.Fatalf("phase changed: %v", a.State().Phase())
	}
}

func TestSubmit_noGenerator(t *testing.T) {
	a := New(Options{})
	defer a.Close()

	submitAndResolve(t, a)
	if a.State().Phase() != draft.PhaseFailed {
		t.Fatalf("expected PhaseFailed, got %v", a.State().Phase())
	}
}

// --------------------------------------------------------------------------
// RunOnce
// --------------------------------------------------------------------------

func TestRunOnce(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		gen := &stubGenerator{fns: []func(context.Context, generation.Request) (generation.Result, error){
			succeedWith("done"),
		}}
		a := newTestApp(gen, draft.Draft{Description: "d"})
		defer a.Close()

		if err := a.RunOnce(context.Background()); err != nil {
			t.Fatalf("RunOnce: %v", err)
		}
		if got := a.State().CurrentDraft().Content; got != "done" {
			t.Fatalf("unexpected content %q", got)
		}
	})

	t.Run("failure", func(t *testing.T) {
		gen := &stubGenerator{fns: []func(context.Context, generation.Request) (generation.Result, error){
			failWith("model unavailable"),
		}}
		a := newTestApp(gen, draft.Draft{Content: "keep"})
		defer a.Close()

		err := a.RunOnce(context.Background())
		var failure *generation.RemoteGenerationFailure
		if !errors.As(err, &failure) {
			t.Fatalf("expected RemoteGenerationFailure, got %v", err)
		}
		if got := a.State().CurrentDraft().Content; got != "keep" {
			t.Fatalf("content modified on failure: %q", got)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		gen := &stubGenerator{gate: make(chan struct{})}
		a := newTestApp(gen, draft.Draft{})
		defer a.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		if err := a.RunOnce(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline exceeded, got %v", err)
		}
		if a.State().Phase() != draft.PhaseFailed {
			t.Fatalf("expected PhaseFailed, got %v", a.State().Phase())
		}
	})
}

// --------------------------------------------------------------------------
// Close
// --------------------------------------------------------------------------

// TestClose_cancelsInFlight verifies that closing the app ends a pending
// request and that later submits are dropped.
func TestClose_cancelsInFlight(t *testing.T) {
	gen := &stubGenerator{gate: make(chan struct{})}
	a := newTestApp(gen, draft.Draft{})

	cmd := a.Submit()
	done := make(chan any, 1)
	go func() { done <- cmd() }()

	a.Close()
	a.Close() // idempotent

	select {
	case msg := <-done:
		failed, ok := msg.(SubmissionFailedEvent)
		if !ok || !errors.Is(failed.Err, context.Canceled) {
			t.Fatalf("expected cancellation failure, got %#v", msg)
		}
		a.Resolve(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight request was not cancelled by Close")
	}

	if cmd := a.Submit(); cmd != nil {
		t.Fatal("expected Submit after Close to return nil")
	}
}

// waitForCondition polls fn() up to maxWait, returning true if fn returns true
// before the deadline.
func waitForCondition(maxWait time.Duration, fn func() bool) bool {
	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		if fn() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}
