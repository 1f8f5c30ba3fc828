package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/purchasehist/internal/logger"
	"github.com/jmylchreest/purchasehist/pkg/document"
	"github.com/jmylchreest/purchasehist/pkg/purchase"
)

var checkCmd = &cobra.Command{
	Use:   "check [input]",
	Short: "Check that a saved page has the expected structure",
	Long: `Check reports missing required regions as errors and unexpected
date, transaction id or price text as warnings. It exits non-zero when
any error is found, so it can gate an extract run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	flags := checkCmd.Flags()
	flags.String("profile", "", "markup profile file (YAML or JSON)")
	flags.Bool("json", false, "print the report as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	setupLogging()

	input := defaultInput
	if len(args) > 0 {
		input = args[0]
	}
	profilePath, _ := cmd.Flags().GetString("profile")
	if profilePath == "" {
		profilePath = viper.GetString("profile")
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	return check(cmd.OutOrStdout(), input, profilePath, asJSON)
}

func check(w io.Writer, input, profilePath string, asJSON bool) error {
	profile, err := loadProfile(profilePath)
	if err != nil {
		return err
	}

	doc, err := document.LoadDocument(input, document.LoadOptions{})
	if err != nil {
		logger.Error("failed to load input", "path", input, "error", err)
		return err
	}

	report, err := purchase.Check(doc, profile)
	if err != nil {
		return err
	}
	logger.Debug("structure check finished", "errors", len(report.Errors), "warnings", len(report.Warnings))

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(w, report)
	}

	if !report.Valid() {
		return fmt.Errorf("structure check failed: %d errors", len(report.Errors))
	}
	return nil
}

func printReport(w io.Writer, r *purchase.CheckReport) {
	fmt.Fprintf(w, "Purchases: %d\nItems: %d\n", r.Purchases, r.Items)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "ERROR   %-15s %s\n", e.Region, e.Message)
	}
	for _, e := range r.Warnings {
		fmt.Fprintf(w, "WARNING %-15s %s\n", e.Region, e.Message)
	}
	if r.Valid() {
		fmt.Fprintf(w, "OK (%d warnings)\n", len(r.Warnings))
	}
}
