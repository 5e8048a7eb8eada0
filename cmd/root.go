package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Alexander-P/DOM-XMLParsing/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "menustats",
	Short: "Validate restaurant menus and append statistics",
	Long: "Validates a restaurant menu document against its XSD, computes dish, review and " +
		"opening-hours statistics and writes the document back with a statistics element appended. " +
		"Without a subcommand it runs transform.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	RunE:          runTransform,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyFlagOverrides(cmd, c)
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("input", "", "menu document to read (default from input.document)")
	pf.String("schema", "", "XSD schema to validate against (default from input.schema)")
	pf.String("output", "", "path of the transformed document (default from output.path)")
}

// applyFlagOverrides copies explicitly set command-line flags over the
// loaded configuration.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("input") {
		c.Input.Document, _ = flags.GetString("input")
	}
	if flags.Changed("schema") {
		c.Input.Schema, _ = flags.GetString("schema")
	}
	if flags.Changed("output") {
		c.Output.Path, _ = flags.GetString("output")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
