package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/crunch/tmplgen/internal/app"
	"github.com/crunch/tmplgen/internal/catalog"
	"github.com/crunch/tmplgen/internal/config"
	"github.com/crunch/tmplgen/internal/draft"
	"github.com/crunch/tmplgen/internal/generation"
)

// session bundles what one command run needs: the orchestrator, the
// optional catalog and the logger.
type session struct {
	settings config.Settings
	app      *app.App
	catalog  *lazyCatalog
	logger   *log.Logger
	closeLog func()
}

// newSession resolves settings and wires the generation client, the draft
// state and the orchestrator together.
func newSession(ctx context.Context, cmd *cobra.Command, interactive bool) (*session, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := newLogger(settings, interactive)
	if err != nil {
		return nil, err
	}

	client, err := newGenerationClient(ctx, settings)
	if err != nil {
		closeLog()
		return nil, err
	}

	seed, err := loadSeedDraft(cmd)
	if err != nil {
		closeLog()
		return nil, err
	}
	state := draft.NewState()
	state.Load(seed)

	logger.Debug("session configured",
		"endpoint", client.Endpoint(),
		"timeout", settings.Timeout,
		"validate-schema", settings.ValidateSchema,
		"catalog", settings.CatalogURL,
	)

	s := &session{
		settings: settings,
		app:      app.New(app.Options{Generator: client, State: state, Logger: logger}),
		logger:   logger,
		closeLog: closeLog,
	}
	if settings.CatalogURL != "" {
		s.catalog = &lazyCatalog{url: settings.CatalogURL}
	}
	return s, nil
}

// Close ends the session: in-flight requests are cancelled and the catalog
// connection and log file are released.
func (s *session) Close() {
	s.app.Close()
	if s.catalog != nil {
		if err := s.catalog.Close(); err != nil {
			s.logger.Warn("close catalog", "err", err)
		}
	}
	s.closeLog()
}

func newGenerationClient(ctx context.Context, settings config.Settings) (*generation.Client, error) {
	opts := []generation.Option{generation.WithUserAgent("tmplgen/" + rootCmd.Version)}
	if settings.ValidateSchema {
		contract, err := generation.NewContract(ctx, settings.BaseURL)
		if err != nil {
			return nil, err
		}
		opts = append(opts, generation.WithContract(contract))
	}

	httpClient := &http.Client{Timeout: settings.Timeout}
	return generation.New(settings.BaseURL, settings.APIPath, httpClient, opts...)
}

// loadSeedDraft builds the initial draft from --draft, then applies
// --description and --content-file on top of it.
func loadSeedDraft(cmd *cobra.Command) (draft.Draft, error) {
	var d draft.Draft
	if draftFile != "" {
		loaded, err := draft.LoadFile(draftFile)
		if err != nil {
			return draft.Draft{}, err
		}
		d = loaded
	}
	if cmd.Flags().Changed("description") {
		d.Description = descriptionFlag
	}
	if contentFile != "" {
		data, err := os.ReadFile(contentFile)
		if err != nil {
			return draft.Draft{}, fmt.Errorf("read content file: %w", err)
		}
		d.Content = string(data)
	}
	return d, nil
}

// lazyCatalog dials the MCP catalog on first use so that an unreachable
// catalog never delays startup.
type lazyCatalog struct {
	url string

	mu  sync.Mutex
	cat *catalog.Catalog
}

func (l *lazyCatalog) get(ctx context.Context) (*catalog.Catalog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cat != nil {
		return l.cat, nil
	}
	cat, err := catalog.Dial(ctx, l.url)
	if err != nil {
		return nil, err
	}
	l.cat = cat
	return cat, nil
}

// Parameters implements ui.CatalogSource.
func (l *lazyCatalog) Parameters(ctx context.Context) ([]catalog.Entry, error) {
	cat, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return cat.Parameters(ctx)
}

// Descriptors lists the templates known to the catalog.
func (l *lazyCatalog) Descriptors(ctx context.Context) ([]catalog.Entry, error) {
	cat, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return cat.Descriptors(ctx)
}

func (l *lazyCatalog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cat == nil {
		return nil
	}
	return l.cat.Close()
}
