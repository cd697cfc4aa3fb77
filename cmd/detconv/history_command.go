package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"detconv/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded conversion runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				if len(args) == 1 {
					run, err := store.Get(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					if jsonOutput {
						return writeJSON(cmd, run)
					}
					printRunDetails(cmd, run)
					return nil
				}

				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					if runs == nil {
						runs = []history.Run{}
					}
					return writeJSON(cmd, runs)
				}

				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No conversion runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						run.StartedAt.Local().Format("2006-01-02 15:04:05"),
						string(run.Status),
						strconv.Itoa(run.Total),
						strconv.Itoa(run.Kept),
						strconv.Itoa(run.Dropped),
						run.Duration().Round(time.Millisecond).String(),
						displayOutput(run),
					})
				}
				headers := []string{"Run", "Started", "Status", "Total", "Kept", "Dropped", "Duration", "Output"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft}
				fmt.Fprintln(out, renderTable(headers, rows, aligns))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printRunDetails(cmd *cobra.Command, run history.Run) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader("Run "+run.ID, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Status", runStatusKind(run.Status), run.Error, colorize))
	fmt.Fprintln(out, renderStatusLine("Started", statusInfo, run.StartedAt.Local().Format(time.RFC3339), colorize))
	fmt.Fprintln(out, renderStatusLine("Predictions", statusInfo, run.PredictionsPath, colorize))
	fmt.Fprintln(out, renderStatusLine("Ground truth", statusInfo, run.GroundTruthPath, colorize))
	fmt.Fprintln(out, renderStatusLine("Output", statusInfo, displayOutput(run), colorize))
	fmt.Fprintln(out, renderStatusLine("Threshold", statusInfo, strconv.FormatFloat(run.ScoreThreshold, 'g', -1, 64), colorize))

	rows := [][]string{
		{"total", strconv.Itoa(run.Total)},
		{"kept", strconv.Itoa(run.Kept)},
	}
	for _, reason := range sortedKeys(run.DropReasons) {
		rows = append(rows, []string{"dropped: " + reason, strconv.Itoa(run.DropReasons[reason])})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable([]string{"Outcome", "Records"}, rows, []columnAlignment{alignLeft, alignRight}))
}

func runStatusKind(status history.Status) statusKind {
	switch status {
	case history.StatusSucceeded:
		return statusOK
	case history.StatusEmpty:
		return statusWarn
	case history.StatusFailed:
		return statusError
	default:
		return statusInfo
	}
}

func displayOutput(run history.Run) string {
	if run.OutputPath == "" {
		return "-"
	}
	return run.OutputPath
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
