package main

import (
	"github.com/spf13/cobra"

	"github.com/Alexander-P/DOM-XMLParsing/internal/pipeline"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Validate a menu, compute statistics and write the augmented document",
	Args:  cobra.NoArgs,
	RunE:  runTransform,
}

func runTransform(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	_, err = pipeline.New(cfg, st).Transform(ctx)
	return err
}

func init() {
	rootCmd.AddCommand(transformCmd)
}
