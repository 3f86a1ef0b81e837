package cmd

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/crunch/tmplgen/internal/generation"
)

var schemaJSON bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the OpenAPI contract of the generation endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		doc, err := generation.LoadSchema(ctx)
		if err != nil {
			return err
		}

		out := generation.Schema()
		if schemaJSON {
			out, err = sonic.ConfigStd.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("encode schema: %w", err)
			}
			out = append(out, '\n')
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaJSON, "json", false, "print the contract as JSON instead of YAML")
}
