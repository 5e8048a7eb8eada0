package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alexander-P/DOM-XMLParsing/internal/pipeline"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a menu document against its schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if _, err := pipeline.New(cfg, st).Validate(ctx); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s validates\n", cfg.Input.Document)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
