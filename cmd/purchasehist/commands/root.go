// Package commands implements the CLI commands for purchasehist.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/purchasehist/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "purchasehist",
	Short: "Extract purchase history from a saved HTML page",
	Long: `purchasehist reads a saved purchase-history page and writes one row per
purchased item, with the purchase date, transaction id and total repeated
on every row.

Examples:
  # Extract "Sample HTML.html" into transactions.csv
  purchasehist extract

  # Extract a specific page to a spreadsheet
  purchasehist extract history.html -o history.xlsx

  # Check that a page still has the expected structure
  purchasehist check history.html`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.purchasehist.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "suppress progress output")
	flags.Bool("log-json", false, "write logs as JSON")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("log_json", flags.Lookup("log-json"))
}

func initConfig() {
	// A missing .env is the common case.
	_ = godotenv.Load()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".purchasehist")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("PURCHASEHIST")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setupLogging initializes the logger from global flags and tags every
// record with a fresh run id, which it returns.
func setupLogging() string {
	runID := uuid.NewString()
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("log_json"),
		Attrs: []slog.Attr{slog.String("run_id", runID)},
	})
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", "path", used)
	}
	return runID
}

// progressWriter is where console progress goes: stdout, or nowhere in
// quiet mode.
func progressWriter(cmd *cobra.Command) io.Writer {
	if viper.GetBool("quiet") {
		return io.Discard
	}
	return cmd.OutOrStdout()
}
