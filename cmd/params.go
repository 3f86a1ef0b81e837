package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/crunch/tmplgen/internal/catalog"
	"github.com/crunch/tmplgen/internal/config"
	"github.com/crunch/tmplgen/internal/draft"
	"github.com/crunch/tmplgen/internal/ui"
)

const paramsTimeout = 30 * time.Second

var (
	paramsJSON        bool
	paramsDescriptors bool
	paramsCheck       bool
)

var errNoCatalog = errors.New("no catalog configured, set --catalog-url")

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "List the template parameters offered by the catalog",
	Long: `params lists the placeholders published by the MCP catalog at
--catalog-url. With --descriptors the known templates are listed instead.

With --check the seeded draft is scanned and placeholders the catalog does
not know are reported; the command fails when any are found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParams(cmd.Context(), cmd)
	},
}

func init() {
	flags := paramsCmd.Flags()
	flags.BoolVar(&paramsJSON, "json", false, "print entries as JSON")
	flags.BoolVar(&paramsDescriptors, "descriptors", false, "list template descriptors instead of parameters")
	flags.BoolVar(&paramsCheck, "check", false, "report placeholders in the seeded draft that the catalog does not know")
}

func runParams(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	url := viper.GetString(config.KeyCatalogURL)
	if url == "" {
		return errNoCatalog
	}

	ctx, cancel := context.WithTimeout(ctx, paramsTimeout)
	defer cancel()

	cat, err := catalog.Dial(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	list := cat.Parameters
	if paramsDescriptors {
		list = cat.Descriptors
	}
	entries, err := list(ctx)
	if err != nil {
		return err
	}

	if paramsCheck {
		return checkPlaceholders(cmd, entries)
	}
	if paramsJSON {
		data, err := sonic.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("encode entries: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	return printEntries(cmd.OutOrStdout(), entries)
}

func printEntries(w io.Writer, entries []catalog.Entry) error {
	if len(entries) == 0 {
		_, err := lipgloss.Fprintln(w, ui.StyleMuted(ui.GetTheme()).Render("(none)"))
		return err
	}

	width := 0
	for _, e := range entries {
		width = max(width, lipgloss.Width(e.Name))
	}
	name := ui.StyleLabel(ui.GetTheme(), true).Width(width + 2)
	desc := ui.StyleMuted(ui.GetTheme())
	for _, e := range entries {
		if _, err := lipgloss.Fprintln(w, name.Render(e.Name)+desc.Render(e.Description)); err != nil {
			return err
		}
	}
	return nil
}

func checkPlaceholders(cmd *cobra.Command, entries []catalog.Entry) error {
	seed, err := loadSeedDraft(cmd)
	if err != nil {
		return err
	}

	unknown := draft.ParseOutline(seed.Content).Unknown(catalog.Names(entries))
	if len(unknown) == 0 {
		_, err := lipgloss.Fprintln(cmd.OutOrStdout(), ui.StyleSuccess(ui.GetTheme()).Render("all placeholders are known"))
		return err
	}
	for _, name := range unknown {
		if _, err := lipgloss.Fprintln(cmd.OutOrStdout(), ui.StyleError(ui.GetTheme()).Render(draft.Placeholder(name))); err != nil {
			return err
		}
	}
	return fmt.Errorf("%d unknown placeholder(s)", len(unknown))
}
