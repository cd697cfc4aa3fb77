package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"detconv/internal/coco"
	"detconv/internal/convert"
	"detconv/internal/history"
	"detconv/internal/logging"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		predPath       string
		gtPath         string
		outPath        string
		scoreThreshold float64
		categoryMatch  string
		indent         bool
		dryRun         bool
		showSummary    bool
		recordHistory  bool
		logFile        string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a prediction annotation file into a COCO results file",
		Long: `Convert reads predictions written in the COCO annotation format, resolves
category names against a ground-truth file, and writes the flat COCO results
document that detection evaluators expect.

Records that cannot be converted are skipped with a warning. The command exits
with status 2 when no detection survives and no output is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			opts := convert.OptionsFromConfig(cfg)
			opts.PredictionsPath = predPath
			opts.GroundTruthPath = gtPath
			opts.OutputPath = outPath
			opts.DryRun = dryRun
			opts.RunID = uuid.NewString()
			flags := cmd.Flags()
			if flags.Changed("score-threshold") {
				opts.ScoreThreshold = scoreThreshold
			}
			if flags.Changed("category-match") {
				opts.CategoryMatch = coco.MatchMode(categoryMatch)
			}
			if flags.Changed("indent") {
				opts.Indent = indent
			}

			logger, err := ctx.logger(cmd.ErrOrStderr(), opts.RunID)
			if err != nil {
				return err
			}
			if logFile != "" {
				handler, closer, err := logging.OpenRunLog(logFile, "debug", opts.RunID)
				if err != nil {
					return err
				}
				defer closer.Close()
				logger = logging.TeeLogger(logger, handler)
			}

			summary, runErr := convert.Run(cmd.Context(), opts, logger)

			if recordHistory || cfg.History.Enabled {
				if err := ctx.withHistory(func(store *history.Store) error {
					convert.RecordRun(cmd.Context(), store, summary, runErr, logger)
					return nil
				}); err != nil {
					logging.WarnWithContext(logger, "history ledger unavailable", "history_unavailable",
						logging.Error(err),
						logging.String(logging.FieldImpact, "run is missing from the history ledger"),
						logging.String(logging.FieldErrorHint, "check the history.path setting"),
					)
				}
			}

			out := cmd.OutOrStdout()
			if showSummary {
				printConvertSummary(out, summary, runErr, shouldColorize(out))
			}
			if runErr != nil {
				return convertError(runErr, logger)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&predPath, "pred", "", "Prediction file (list of records or object with \"annotations\")")
	cmd.Flags().StringVar(&gtPath, "gt", "", "Ground-truth COCO file supplying categories")
	cmd.Flags().StringVar(&outPath, "out", "", "Destination for the results file (required unless --dry-run is set)")
	cmd.Flags().Float64Var(&scoreThreshold, "score-threshold", 0, "Drop detections scoring below this value")
	cmd.Flags().StringVar(&categoryMatch, "category-match", "", "Category name matching: exact or fold")
	cmd.Flags().BoolVar(&indent, "indent", false, "Pretty-print the results file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Convert without writing the results file")
	cmd.Flags().BoolVar(&showSummary, "summary", false, "Print a summary table after converting")
	cmd.Flags().BoolVar(&recordHistory, "history", false, "Record the run in the history ledger")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Append a JSON debug log of the run to this file")
	_ = cmd.MarkFlagRequired("pred")
	_ = cmd.MarkFlagRequired("gt")

	return cmd
}

// convertError keeps ErrNoResults matchable for the exit code while giving
// the operator a readable message. The normalizer already logged it.
func convertError(err error, logger *slog.Logger) error {
	if errors.Is(err, coco.ErrNoResults) {
		return fmt.Errorf("conversion produced no results: %w", err)
	}
	logger.Debug("conversion failed", logging.Error(err))
	return fmt.Errorf("convert: %w", err)
}

func printConvertSummary(out io.Writer, summary convert.Summary, runErr error, colorize bool) {
	for _, line := range renderSectionHeader("Conversion", colorize) {
		fmt.Fprintln(out, line)
	}

	kind, message := statusOK, "Results written"
	switch {
	case errors.Is(runErr, coco.ErrNoResults):
		kind, message = statusWarn, "No detections kept; nothing written"
	case runErr != nil:
		kind, message = statusError, runErr.Error()
	case summary.DryRun:
		kind, message = statusInfo, "Dry run; nothing written"
	}
	fmt.Fprintln(out, renderStatusLine("Status", kind, message, colorize))
	fmt.Fprintln(out, renderStatusLine("Run", statusInfo, summary.RunID, colorize))
	if summary.Shape != "" {
		fmt.Fprintln(out, renderStatusLine("Input shape", statusInfo, string(summary.Shape), colorize))
	}
	if summary.Written {
		fmt.Fprintln(out, renderStatusLine("Output", statusInfo, summary.OutputPath, colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, summary.Duration().Round(time.Millisecond).String(), colorize))

	if summary.Report.Total == 0 && runErr != nil {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable([]string{"Outcome", "Records"}, reportRows(summary.Report), []columnAlignment{alignLeft, alignRight}))
	if len(summary.Report.PerCategory) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable([]string{"Category ID", "Kept"}, perCategoryRows(summary.Report), []columnAlignment{alignRight, alignRight}))
	}
}
