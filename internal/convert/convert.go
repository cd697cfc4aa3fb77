package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"detconv/internal/coco"
	"detconv/internal/fileutil"
	"detconv/internal/logging"
)

// Summary reports what a run did. It is populated as far as the run got, so
// callers can record failed and empty runs too.
type Summary struct {
	RunID           string
	PredictionsPath string
	GroundTruthPath string
	OutputPath      string
	ScoreThreshold  float64
	CategoryMatch   coco.MatchMode
	Shape           coco.Shape
	Categories      int
	Report          coco.Report
	DryRun          bool
	Written         bool
	OutputBytes     int64
	OutputSHA256    string
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Duration reports the wall time of the run.
func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Run converts opts.PredictionsPath into the results document at
// opts.OutputPath. It returns coco.ErrNoResults, without writing, when no
// record survives normalization.
func Run(ctx context.Context, opts Options, logger *slog.Logger) (summary Summary, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	summary = Summary{
		RunID:           opts.RunID,
		PredictionsPath: opts.PredictionsPath,
		GroundTruthPath: opts.GroundTruthPath,
		OutputPath:      opts.OutputPath,
		ScoreThreshold:  opts.ScoreThreshold,
		CategoryMatch:   opts.CategoryMatch,
		DryRun:          opts.DryRun,
		StartedAt:       time.Now(),
	}
	defer func() {
		summary.FinishedAt = time.Now()
	}()

	if err := opts.validate(); err != nil {
		return summary, err
	}
	summary.PredictionsPath = opts.PredictionsPath
	summary.GroundTruthPath = opts.GroundTruthPath
	summary.OutputPath = opts.OutputPath
	summary.CategoryMatch = opts.CategoryMatch

	logger = logging.NewComponentLogger(logger, "convert")
	logger.Debug("conversion starting",
		logging.String("run_id", opts.RunID),
		logging.String("predictions", opts.PredictionsPath),
		logging.String("ground_truth", opts.GroundTruthPath),
		logging.Float64("score_threshold", opts.ScoreThreshold),
		logging.String("category_match", string(opts.CategoryMatch)),
	)

	mapping, err := loadCategories(opts.GroundTruthPath, opts.CategoryMatch, logger)
	if err != nil {
		return summary, err
	}
	summary.Categories = mapping.Len()

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	records, shape, err := loadPredictions(opts.PredictionsPath, logger)
	if err != nil {
		return summary, err
	}
	summary.Shape = shape

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	normalizer := coco.Normalizer{
		Categories:     mapping,
		ScoreThreshold: opts.ScoreThreshold,
		Logger:         logger,
	}
	result, normErr := normalizer.Normalize(records)
	if result != nil {
		summary.Report = result.Report
	}
	if normErr != nil {
		return summary, normErr
	}

	if opts.DryRun {
		logger.Info("dry run; results not written",
			logging.Int(logging.FieldCount, len(result.Records)),
		)
		return summary, nil
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	written, err := fileutil.WriteAtomic(ctx, opts.OutputPath, 0o644, func(w io.Writer) error {
		return coco.EncodeResults(w, result.Records, opts.Indent)
	})
	if err != nil {
		return summary, fmt.Errorf("write results: %w", err)
	}
	summary.Written = true
	summary.OutputBytes = written.Bytes
	summary.OutputSHA256 = written.SHA256

	logger.Info(fmt.Sprintf("converted %d detections to COCO results format", len(result.Records)),
		logging.Int("kept", summary.Report.Kept),
		logging.Int("dropped", summary.Report.DroppedTotal()),
	)
	logger.Info("saved results",
		logging.String(logging.FieldPath, opts.OutputPath),
		logging.Int64("bytes", written.Bytes),
	)
	return summary, nil
}

func loadCategories(path string, mode coco.MatchMode, logger *slog.Logger) (coco.CategoryMapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return coco.CategoryMapping{}, fmt.Errorf("open ground truth: %w", err)
	}
	defer f.Close()

	gt, err := coco.DecodeGroundTruth(f)
	if err != nil {
		return coco.CategoryMapping{}, fmt.Errorf("%s: %w", path, err)
	}
	return coco.BuildCategoryMapping(gt, mode, logger), nil
}

func loadPredictions(path string, logger *slog.Logger) ([]any, coco.Shape, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open predictions: %w", err)
	}
	defer f.Close()

	doc, err := coco.DecodePredictions(f)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	records, shape, err := coco.ExtractAnnotations(doc, logger)
	if err != nil {
		var malformed *coco.MalformedInputError
		if errors.As(err, &malformed) {
			logging.ErrorWithContext(logger, "prediction document has an unsupported layout", "malformed_input",
				logging.String(logging.FieldPath, path),
				logging.String("kind", malformed.Kind),
				logging.String(logging.FieldImpact, "conversion aborted"),
				logging.String(logging.FieldErrorHint, `provide a list of records or an object with an "annotations" list`),
			)
		}
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return records, shape, nil
}
