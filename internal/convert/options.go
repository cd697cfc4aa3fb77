package convert

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"detconv/internal/coco"
	"detconv/internal/config"
)

// ErrInvalidOptions marks option values rejected before any file is read.
var ErrInvalidOptions = errors.New("invalid conversion options")

// Options describes a single conversion.
type Options struct {
	PredictionsPath string
	GroundTruthPath string
	OutputPath      string
	ScoreThreshold  float64
	CategoryMatch   coco.MatchMode
	Indent          bool
	DryRun          bool
	// RunID identifies the run in logs and the history ledger. Run generates
	// one when empty.
	RunID string
}

// OptionsFromConfig seeds Options with the configured conversion defaults.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}
	return Options{
		ScoreThreshold: cfg.Convert.ScoreThreshold,
		CategoryMatch:  coco.MatchMode(cfg.Convert.CategoryMatch),
		Indent:         cfg.Convert.Indent,
	}
}

func (o *Options) validate() error {
	o.PredictionsPath = strings.TrimSpace(o.PredictionsPath)
	o.GroundTruthPath = strings.TrimSpace(o.GroundTruthPath)
	o.OutputPath = strings.TrimSpace(o.OutputPath)

	if o.PredictionsPath == "" {
		return fmt.Errorf("%w: predictions path is required", ErrInvalidOptions)
	}
	if o.GroundTruthPath == "" {
		return fmt.Errorf("%w: ground truth path is required", ErrInvalidOptions)
	}
	if o.OutputPath == "" && !o.DryRun {
		return fmt.Errorf("%w: output path is required", ErrInvalidOptions)
	}
	if math.IsNaN(o.ScoreThreshold) || math.IsInf(o.ScoreThreshold, 0) {
		return fmt.Errorf("%w: score threshold must be finite", ErrInvalidOptions)
	}
	mode, err := coco.ParseMatchMode(string(o.CategoryMatch))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	o.CategoryMatch = mode
	return nil
}
