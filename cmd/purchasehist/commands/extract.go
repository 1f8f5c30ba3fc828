package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/purchasehist/internal/logger"
	"github.com/jmylchreest/purchasehist/internal/output"
	"github.com/jmylchreest/purchasehist/pkg/document"
	"github.com/jmylchreest/purchasehist/pkg/purchase"
)

const (
	defaultInput  = "Sample HTML.html"
	defaultOutput = "transactions.csv"
)

var extractCmd = &cobra.Command{
	Use:   "extract [input]",
	Short: "Extract purchases from a saved page into a table",
	Long: `Extract every purchased item from a saved purchase-history page.

The output has one row per item with the columns
  Date, Transaction ID, Total Amount, Item Name, Publisher, Description, Price
and is only written once the whole page was extracted. Items marked free,
or without a price, get the price "Free".

Examples:
  purchasehist extract
  purchasehist extract "Purchase History.html" -o purchases.tsv
  purchasehist extract page.html -o page.xlsx --columns extended
  purchasehist extract page.html --profile profile.yaml --skip-malformed`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	flags := extractCmd.Flags()

	flags.StringP("input", "i", defaultInput, "saved HTML page to read")
	flags.StringP("output", "o", defaultOutput, "output file")
	flags.String("format", "", "output format: csv, tsv, xlsx (default: from output extension)")
	flags.String("profile", "", "markup profile file (YAML or JSON)")
	flags.String("columns", string(purchase.LayoutDefault), "column layout: default, extended")
	flags.Int("max-purchases", 0, "max purchases to extract (0=unlimited)")
	flags.Bool("skip-malformed", false, "skip purchases missing a date or transaction id instead of failing")
	flags.String("max-input-size", "0", "max input file size (e.g., 10MB, 0=unlimited)")
	flags.String("sheet", output.DefaultSheetName, "worksheet name for xlsx output")

	_ = viper.BindPFlag("format", flags.Lookup("format"))
	_ = viper.BindPFlag("profile", flags.Lookup("profile"))
	_ = viper.BindPFlag("columns", flags.Lookup("columns"))
	_ = viper.BindPFlag("skip_malformed", flags.Lookup("skip-malformed"))
	_ = viper.BindPFlag("max_input_size", flags.Lookup("max-input-size"))
	_ = viper.BindPFlag("sheet", flags.Lookup("sheet"))
}

// extractOptions is the resolved configuration of one extract run.
type extractOptions struct {
	Input         string
	Output        string
	Format        output.Format
	ProfilePath   string
	Layout        purchase.Layout
	MaxPurchases  int
	SkipMalformed bool
	MaxInputSize  int64
	Sheet         string
}

func runExtract(cmd *cobra.Command, args []string) error {
	runID := setupLogging()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts, err := extractOptionsFromFlags(cmd, args)
	if err != nil {
		logger.Error("invalid options", "error", err)
		return err
	}
	logger.Debug("extract command starting", "run_id", runID, "input", opts.Input, "output", opts.Output)

	return extract(ctx, opts, progressWriter(cmd))
}

func extractOptionsFromFlags(cmd *cobra.Command, args []string) (extractOptions, error) {
	flags := cmd.Flags()

	opts := extractOptions{
		ProfilePath:   viper.GetString("profile"),
		SkipMalformed: viper.GetBool("skip_malformed"),
		Sheet:         viper.GetString("sheet"),
	}
	opts.Input, _ = flags.GetString("input")
	if len(args) > 0 {
		opts.Input = args[0]
	}
	opts.Output, _ = flags.GetString("output")
	opts.MaxPurchases, _ = flags.GetInt("max-purchases")
	if opts.MaxPurchases < 0 {
		return opts, fmt.Errorf("max-purchases must not be negative: %d", opts.MaxPurchases)
	}

	var err error
	if opts.Layout, err = purchase.ParseLayout(viper.GetString("columns")); err != nil {
		return opts, err
	}

	if name := viper.GetString("format"); name != "" {
		if opts.Format, err = output.ParseFormat(name); err != nil {
			return opts, err
		}
	} else {
		opts.Format = output.FormatFromPath(opts.Output)
	}

	if opts.MaxInputSize, err = parseSize(viper.GetString("max_input_size")); err != nil {
		return opts, fmt.Errorf("invalid max-input-size: %w", err)
	}
	return opts, nil
}

// parseSize parses a human size such as "10MB". Empty and "0" mean unlimited.
func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int64(n), nil //#nosec G115 -- sizes beyond int64 are not meaningful here
}

func loadProfile(path string) (purchase.Profile, error) {
	if path == "" {
		return purchase.DefaultProfile(), nil
	}
	logger.Debug("loading profile", "path", path)
	p, err := purchase.LoadProfile(path)
	if err != nil {
		return p, fmt.Errorf("failed to load profile: %w", err)
	}
	return p, nil
}

// extract runs the whole pipeline. The output file is touched only after
// every stage succeeded.
func extract(ctx context.Context, opts extractOptions, progress io.Writer) error {
	profile, err := loadProfile(opts.ProfilePath)
	if err != nil {
		logger.Error("failed to load profile", "path", opts.ProfilePath, "error", err)
		return err
	}

	doc, err := document.LoadDocument(opts.Input, document.LoadOptions{MaxBytes: opts.MaxInputSize})
	if err != nil {
		logger.Error("failed to load input", "path", opts.Input, "error", err)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ext := purchase.NewExtractor(profile,
		purchase.WithReporter(purchase.NewConsoleReporter(progress)),
		purchase.WithMaxPurchases(opts.MaxPurchases),
		purchase.WithSkipMalformed(opts.SkipMalformed),
	)
	result, err := ext.Extract(doc)
	if err != nil {
		logger.Error("extraction failed", "input", opts.Input, "error", err)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	records := result.Records()

	var buf bytes.Buffer
	if err := writeRecords(&buf, records, opts); err != nil {
		logger.Error("failed to encode output", "format", opts.Format, "error", err)
		return err
	}

	if err := os.WriteFile(opts.Output, buf.Bytes(), 0o644); err != nil { //#nosec G306 -- output is a user-facing report
		logger.Error("failed to write output file", "path", opts.Output, "error", err)
		return fmt.Errorf("failed to write output file: %w", err)
	}

	summary := purchase.Summarize(records)
	logger.Info("extraction complete",
		"output", opts.Output,
		"format", opts.Format,
		"size", humanize.Bytes(uint64(buf.Len())),
		"purchases", summary.Purchases,
		"items", summary.Items,
		"free", summary.Free,
		"skipped", result.Skipped,
		"total", summary.FormatTotal(),
	)
	if summary.Unpriced > 0 {
		logger.Warn("prices not included in total", "count", summary.Unpriced)
	}
	return nil
}

func writeRecords(w io.Writer, records []purchase.Record, opts extractOptions) error {
	tw, err := output.NewWriter(w, opts.Format, output.WithSheetName(opts.Sheet))
	if err != nil {
		return err
	}
	if err := tw.WriteHeader(opts.Layout.Columns()); err != nil {
		_ = tw.Close()
		return err
	}
	if err := tw.WriteAll(purchase.Rows(records, opts.Layout)); err != nil {
		_ = tw.Close()
		return err
	}
	return tw.Close()
}
