package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/crunch/tmplgen/internal/app"
	"github.com/crunch/tmplgen/internal/draft"
	"github.com/crunch/tmplgen/internal/ui"
)

var (
	outputFile  string
	jsonFlag    bool
	previewFlag bool
	quietFlag   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Submit the seeded draft once and print the generated content",
	Long: `generate submits the draft built from --draft, --description and
--content-file, waits for the service and prints the resulting content.

With --json the final draft and submission phase are printed as JSON, also
when the request fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd.Context(), cmd)
	},
}

func init() {
	flags := generateCmd.Flags()
	flags.StringVarP(&outputFile, "output", "o", "", "write the generated content to this file")
	flags.BoolVar(&jsonFlag, "json", false, "print the resulting draft as JSON")
	flags.BoolVar(&previewFlag, "preview", false, "render the generated HTML for the terminal")
	flags.BoolVarP(&quietFlag, "quiet", "q", false, "suppress the progress indicator")
}

// generateOutput is the --json document.
type generateOutput struct {
	Description string `json:"description"`
	Content     string `json:"content"`
	Phase       string `json:"phase"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

func runGenerate(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := newSession(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	cli := ui.NewCLI(cmd.OutOrStdout(), cmd.ErrOrStderr(), quietFlag || jsonFlag)
	runErr := cli.ShowSpinner(app.StatusPending, func() error {
		return s.app.RunOnce(ctx)
	})

	state := s.app.State()
	if jsonFlag {
		if err := writeJSONResult(cmd.OutOrStdout(), state, runErr); err != nil {
			return err
		}
		return runErr
	}
	if runErr != nil {
		return fmt.Errorf("generation failed: %w", runErr)
	}

	content := state.CurrentDraft().Content
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		s.logger.Info("content written", "path", outputFile, "bytes", len(content))
		return nil
	}
	return cli.DisplayContent(content, previewFlag)
}

func writeJSONResult(w io.Writer, state *draft.State, runErr error) error {
	d := state.CurrentDraft()
	out := generateOutput{
		Description: d.Description,
		Content:     d.Content,
		Phase:       state.Phase().String(),
		Status:      state.StatusMessage(),
	}
	if runErr != nil {
		out.Error = runErr.Error()
	}

	data, err := sonic.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
