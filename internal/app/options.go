package app

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/crunch/tmplgen/internal/draft"
	"github.com/crunch/tmplgen/internal/generation"
)

// Generator is the minimal interface the app layer requires from the remote
// generation client. *generation.Client satisfies it; tests supply stubs.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (generation.Result, error)
}

// Options configures an App instance.
type Options struct {
	// Generator performs the remote call for each submission. Required.
	Generator Generator

	// State is the editable template state the app submits from and writes
	// results back into. When nil a fresh state is created.
	State *draft.State

	// Logger receives failure diagnostics. When nil they are discarded.
	Logger *log.Logger
}
