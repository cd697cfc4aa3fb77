package convert

import (
	"context"
	"errors"
	"log/slog"

	"detconv/internal/coco"
	"detconv/internal/history"
	"detconv/internal/logging"
)

// Recorder stores finished runs. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, run history.Run) error
}

// StatusFor maps the error returned by Run to a ledger status.
func StatusFor(err error) history.Status {
	switch {
	case err == nil:
		return history.StatusSucceeded
	case errors.Is(err, coco.ErrNoResults):
		return history.StatusEmpty
	default:
		return history.StatusFailed
	}
}

// HistoryRun converts a summary and the run's error into a ledger row.
func HistoryRun(summary Summary, runErr error) history.Run {
	run := history.Run{
		ID:              summary.RunID,
		StartedAt:       summary.StartedAt,
		FinishedAt:      summary.FinishedAt,
		Status:          StatusFor(runErr),
		PredictionsPath: summary.PredictionsPath,
		GroundTruthPath: summary.GroundTruthPath,
		ScoreThreshold:  summary.ScoreThreshold,
		CategoryMatch:   string(summary.CategoryMatch),
		Shape:           string(summary.Shape),
		Total:           summary.Report.Total,
		Kept:            summary.Report.Kept,
		Dropped:         summary.Report.DroppedTotal(),
		OutputSHA256:    summary.OutputSHA256,
	}
	if summary.Written {
		run.OutputPath = summary.OutputPath
	}
	if len(summary.Report.Dropped) > 0 {
		run.DropReasons = make(map[string]int, len(summary.Report.Dropped))
		for reason, n := range summary.Report.Dropped {
			run.DropReasons[string(reason)] = n
		}
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	return run
}

// RecordRun stores the run in rec. Ledger failures are logged, never returned,
// so they cannot change the outcome of a conversion.
func RecordRun(ctx context.Context, rec Recorder, summary Summary, runErr error, logger *slog.Logger) {
	if rec == nil || summary.RunID == "" {
		return
	}
	logger = logging.NewComponentLogger(logger, "history")
	if err := rec.Record(ctx, HistoryRun(summary, runErr)); err != nil {
		logging.WarnWithContext(logger, "failed to record conversion run", "history_record_failed",
			logging.String("run_id", summary.RunID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run is missing from the history ledger"),
			logging.String(logging.FieldErrorHint, "check the history.path setting and file permissions"),
		)
		return
	}
	logger.Debug("recorded conversion run", logging.String("run_id", summary.RunID))
}
