// Package cli implements the faturas command line.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Appa019/Coleta-dados-faturas/internal/common"
)

// version is set at build time with -ldflags.
var version = "dev"

var (
	configPath string
	logLevel   string
	logFormat  string

	cfg    *common.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "faturas",
	Short: "Extract line items from electricity invoices",
	Long: `faturas reads electricity invoice PDFs (directly or from zip bundles),
extracts the installation number, billing period and item table of each one,
and writes an XLSX report with a summary row and a detail sheet per invoice.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		path := configPath
		if path == "" {
			path = os.Getenv("FATURAS_CONFIG")
		}
		c, err := common.LoadConfigFile(path)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		if logFormat != "" {
			c.Log.Format = logFormat
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c
		logger = common.NewLogger(cmd.ErrOrStderr(), c.Log)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file (default $FATURAS_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "json|text")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
