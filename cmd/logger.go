package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/crunch/tmplgen/internal/config"
)

// newLogger builds the diagnostic logger. The TUI owns the terminal, so in
// interactive mode records go to the log file; one-shot commands log to
// stderr. The returned close function releases the file, if any.
func newLogger(settings config.Settings, interactive bool) (*log.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closeFn := func() {}

	if interactive {
		f, err := os.OpenFile(settings.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: interactive,
		Prefix:          "tmplgen",
	})
	if settings.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger, closeFn, nil
}
