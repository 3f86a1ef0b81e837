package cmd

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/crunch/tmplgen/internal/config"
	"github.com/crunch/tmplgen/internal/ui"
)

var (
	configFile string

	// Seed draft
	draftFile       string
	descriptionFlag string
	contentFile     string
)

// rootCmd opens the interactive template editor.
var rootCmd = &cobra.Command{
	Use:   "tmplgen",
	Short: "Edit message templates and generate them remotely",
	Long: `tmplgen edits a message template (a short description plus HTML content)
and submits it to a generation service that returns new template content.

Only one generation request is in flight at a time; edits made while a
request is pending are kept, and the response replaces the content field.`,
	SilenceUsage: true,
}

// GetRootCommand returns the root command with the version set. It is
// called from main.go.
func GetRootCommand(v string) *cobra.Command {
	rootCmd.Version = v
	return rootCmd
}

// InitConfig loads the config file and environment overrides into the
// global viper instance. Cobra calls it before any command runs.
func InitConfig() {
	path, err := config.Init(viper.GetViper(), configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if path != "" && viper.GetBool(config.KeyDebug) {
		fmt.Fprintf(os.Stderr, "using config file %s\n", path)
	}
}

func init() {
	// RunE is assigned here rather than in the literal to avoid an
	// initialization cycle (runTUI -> newGenerationClient -> rootCmd).
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context(), cmd)
	}

	cobra.OnInitialize(InitConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default is ./.tmplgen.yml or $HOME/.tmplgen.yml)")
	flags.String("base-url", "", "base URL of the generation service")
	flags.String("api-path", "", "path of the generation endpoint")
	flags.Duration("timeout", 0, "HTTP timeout for a generation request")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("log-file", "", "log file used while the editor is open")
	flags.Bool("validate-schema", false, "validate requests and responses against the bundled OpenAPI contract")
	flags.String("catalog-url", "", "MCP endpoint listing template parameters")

	flags.StringVar(&draftFile, "draft", "", "YAML file with description and content to start from")
	flags.StringVar(&descriptionFlag, "description", "", "initial template description")
	flags.StringVar(&contentFile, "content-file", "", "file holding the initial template content")

	for _, key := range []string{
		config.KeyBaseURL,
		config.KeyAPIPath,
		config.KeyTimeout,
		config.KeyDebug,
		config.KeyLogFile,
		config.KeyValidateSchema,
		config.KeyCatalogURL,
	} {
		_ = viper.BindPFlag(key, flags.Lookup(key))
	}

	rootCmd.AddCommand(generateCmd, schemaCmd, paramsCmd)
}

// runTUI opens the editor on the seeded draft and blocks until the user
// quits. Closing the session cancels any request still in flight.
func runTUI(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := newSession(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer s.Close()

	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width, height = 0, 0
	}

	opts := ui.AppModelOptions{
		Width:  width,
		Height: height,
		Logger: s.logger,
	}
	if s.catalog != nil {
		opts.Catalog = s.catalog
	}

	s.logger.Info("editor started", "endpoint", s.settings.BaseURL+s.settings.APIPath)
	model := ui.NewAppModel(s.app, opts)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("run editor: %w", err)
	}
	return nil
}
