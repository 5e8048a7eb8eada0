package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Alexander-P/DOM-XMLParsing/internal/model"
	"github.com/Alexander-P/DOM-XMLParsing/internal/pipeline"
	"github.com/Alexander-P/DOM-XMLParsing/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print menu statistics without writing a document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		formatName, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		format, err := report.ParseFormat(formatName)
		if err != nil {
			return err
		}
		if format == report.FormatXLSX && out == "" {
			return eris.New("stats: --out is required for xlsx output")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		stats, _, err := pipeline.New(cfg, st).Collect(ctx)
		if err != nil {
			return err
		}

		return writeStats(cmd.OutOrStdout(), stats, format, out)
	},
}

// writeStats renders stats to out, or to stdout when out is empty.
func writeStats(stdout io.Writer, stats *model.Statistics, format report.Format, out string) error {
	if format == report.FormatXLSX {
		if err := report.WriteXLSX(out, stats); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stdout, "statistics written to %s\n", out)
		return nil
	}

	if out == "" {
		return report.Write(stdout, stats, format)
	}

	f, err := os.Create(out)
	if err != nil {
		return eris.Wrap(err, "stats: create output")
	}
	if err := report.Write(f, stats, format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "stats: close output")
	}
	return nil
}

func init() {
	statsCmd.Flags().String("format", string(report.FormatTable), "report format (table, json, yaml, xlsx)")
	statsCmd.Flags().String("out", "", "write the report to a file instead of stdout")

	rootCmd.AddCommand(statsCmd)
}
