package coco

import (
	"fmt"
	"log/slog"
	"sort"

	"detconv/internal/logging"
)

// DefaultScore is assumed for records without a score.
const DefaultScore = 1.0

// DropReason classifies why a record produced no result.
type DropReason string

const (
	ReasonInvalidRecord     DropReason = "invalid_record"
	ReasonInvalidScore      DropReason = "invalid_score"
	ReasonBelowThreshold    DropReason = "below_threshold"
	ReasonUnknownCategory   DropReason = "unknown_category"
	ReasonInvalidCategory   DropReason = "invalid_category"
	ReasonMissingCategory   DropReason = "missing_category"
	ReasonInvalidCategoryID DropReason = "invalid_category_id"
	ReasonMissingImageID    DropReason = "missing_image_id"
	ReasonMissingBBox       DropReason = "missing_bbox"
	ReasonInvalidBBox       DropReason = "invalid_bbox"
	ReasonInvalidKeypoints  DropReason = "invalid_keypoints"
)

// Report counts what happened to each input record.
type Report struct {
	Total       int
	Kept        int
	Dropped     map[DropReason]int
	PerCategory map[int64]int
}

// DroppedTotal sums the drop counters, including silent threshold drops.
func (r Report) DroppedTotal() int {
	total := 0
	for _, n := range r.Dropped {
		total += n
	}
	return total
}

// Reasons returns the drop reasons that occurred, sorted by name.
func (r Report) Reasons() []DropReason {
	out := make([]DropReason, 0, len(r.Dropped))
	for reason := range r.Dropped {
		out = append(out, reason)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Result is the outcome of one normalization pass.
type Result struct {
	Records []ResultRecord
	Report  Report
}

// Normalizer converts raw prediction records into results-format records.
type Normalizer struct {
	Categories     CategoryMapping
	ScoreThreshold float64
	// Logger receives per-record warnings. Nil discards them.
	Logger *slog.Logger
}

// Normalize is shorthand for a Normalizer with the given settings.
func Normalize(records []any, categories CategoryMapping, scoreThreshold float64, logger *slog.Logger) (*Result, error) {
	n := Normalizer{Categories: categories, ScoreThreshold: scoreThreshold, Logger: logger}
	return n.Normalize(records)
}

// Normalize processes records in order. Each record yields exactly one
// ResultRecord or is dropped; output order matches input order. When nothing
// survives it returns the populated Result together with ErrNoResults.
func (n Normalizer) Normalize(records []any) (*Result, error) {
	logger := logging.NewComponentLogger(n.Logger, "normalizer")

	result := &Result{
		Records: make([]ResultRecord, 0, len(records)),
		Report: Report{
			Total:       len(records),
			Dropped:     make(map[DropReason]int),
			PerCategory: make(map[int64]int),
		},
	}

	for idx, raw := range records {
		rec, sk := n.convert(raw)
		if sk != nil {
			result.Report.Dropped[sk.reason]++
			if sk.reason != ReasonBelowThreshold {
				sk.warn(logger, idx)
			}
			continue
		}
		result.Records = append(result.Records, rec)
		result.Report.Kept++
		result.Report.PerCategory[rec.CategoryID]++
	}

	logger.Info("normalized prediction records",
		logging.Int("total", result.Report.Total),
		logging.Int("kept", result.Report.Kept),
		logging.Int("dropped", result.Report.DroppedTotal()),
	)

	if len(result.Records) == 0 {
		logging.ErrorWithContext(logger, "no valid detections found after conversion", "no_results",
			logging.Int("total", result.Report.Total),
			logging.String(logging.FieldErrorHint, "check your input files and parameters"),
		)
		return result, ErrNoResults
	}
	return result, nil
}

// skip records why a record was dropped and what its warning reports.
type skip struct {
	reason  DropReason
	message string
	attrs   []logging.Attr
}

func skipped(reason DropReason, message string, attrs ...logging.Attr) *skip {
	return &skip{reason: reason, message: message, attrs: attrs}
}

func (s *skip) warn(logger *slog.Logger, idx int) {
	attrs := make([]logging.Attr, 0, len(s.attrs)+4)
	attrs = append(attrs,
		logging.Int(logging.FieldIndex, idx),
		logging.String(logging.FieldReason, string(s.reason)),
	)
	attrs = append(attrs, s.attrs...)
	attrs = append(attrs,
		logging.String(logging.FieldImpact, "record skipped"),
		logging.String(logging.FieldErrorHint, "fix the prediction record"),
	)
	logging.WarnWithContext(logger, s.message, "record_skipped", attrs...)
}

func (n Normalizer) convert(raw any) (ResultRecord, *skip) {
	rec, ok := AsRecord(raw)
	if !ok {
		return ResultRecord{}, skipped(ReasonInvalidRecord, "record is not an object; skipping", logging.String("kind", jsonKind(raw)))
	}

	score := DefaultScore
	if v, ok := rec.Get("score"); ok {
		f, err := toFloat(v)
		if err != nil {
			return ResultRecord{}, skipped(ReasonInvalidScore, "record has invalid 'score'; skipping", logging.Error(err))
		}
		score = f
	}
	if score < n.ScoreThreshold {
		return ResultRecord{}, skipped(ReasonBelowThreshold, "")
	}

	categoryID, sk := n.resolveCategory(rec)
	if sk != nil {
		return ResultRecord{}, sk
	}

	imageID, ok := rec.Get("image_id")
	if !ok {
		return ResultRecord{}, skipped(ReasonMissingImageID, "record missing 'image_id'; skipping")
	}

	bbox, sk := resolveBBox(rec)
	if sk != nil {
		return ResultRecord{}, sk
	}

	out := ResultRecord{
		ImageID:    imageID,
		CategoryID: categoryID,
		BBox:       bbox,
		Score:      Float(score),
	}

	if rec.Has("segmentation") {
		seg, _ := rec.Get("segmentation")
		out.Segmentation = &Passthrough{Value: seg}
	}

	if v, ok := rec.Get("keypoints"); ok {
		visible, err := countVisibleKeypoints(v)
		if err != nil {
			return ResultRecord{}, skipped(ReasonInvalidKeypoints, "record has invalid 'keypoints'; skipping", logging.Error(err))
		}
		out.Keypoints = &Passthrough{Value: v}
		out.NumKeypoints = &visible
	}

	return out, nil
}

// resolveCategory prefers the category name; category_id is trusted as-is.
func (n Normalizer) resolveCategory(rec Record) (int64, *skip) {
	if v, ok := rec.Get("category"); ok {
		name, isString := v.(string)
		if !isString {
			return 0, skipped(ReasonInvalidCategory, "record has non-string 'category'; skipping",
				logging.String("kind", jsonKind(v)))
		}
		id, found := n.Categories.Lookup(name)
		if !found {
			return 0, skipped(ReasonUnknownCategory, "unknown category name; skipping",
				logging.String(logging.FieldCategory, name))
		}
		return id, nil
	}

	v, ok := rec.Get("category_id")
	if !ok {
		return 0, skipped(ReasonMissingCategory, "record missing 'category' and 'category_id'; skipping")
	}
	id, err := toInt(v)
	if err != nil {
		return 0, skipped(ReasonInvalidCategoryID, "record has invalid 'category_id'; skipping", logging.Error(err))
	}
	return id, nil
}

// resolveBBox returns [x, y, w, h] rounded to one decimal place, reading an
// explicit bbox first and falling back to x1,y1,x2,y2 corners.
func resolveBBox(rec Record) ([4]Float, *skip) {
	var box [4]Float

	var values []float64
	if v, ok := rec.Get("bbox"); ok {
		list, _ := v.([]any)
		if len(list) != 4 {
			return box, skipped(ReasonInvalidBBox, "record has invalid 'bbox'; skipping",
				logging.String("kind", jsonKind(v)), logging.Int("length", len(list)))
		}
		values = make([]float64, 0, 4)
		for _, item := range list {
			f, err := toFloat(item)
			if err != nil {
				return box, skipped(ReasonInvalidBBox, "record has invalid 'bbox'; skipping", logging.Error(err))
			}
			values = append(values, f)
		}
	} else {
		var corners [4]float64
		for i, field := range [4]string{"x1", "y1", "x2", "y2"} {
			cv, ok := rec.Get(field)
			if !ok {
				return box, skipped(ReasonMissingBBox, "record missing bounding box information; skipping",
					logging.String("missing", field))
			}
			f, err := toFloat(cv)
			if err != nil {
				return box, skipped(ReasonInvalidBBox, "record has invalid bounding box corner; skipping",
					logging.String("field", field), logging.Error(err))
			}
			corners[i] = f
		}
		values = []float64{corners[0], corners[1], corners[2] - corners[0], corners[3] - corners[1]}
	}

	if len(values) != 4 {
		return box, skipped(ReasonInvalidBBox, "record has invalid 'bbox'; skipping")
	}
	for i, v := range values {
		box[i] = Float(roundTenth(v))
	}
	return box, nil
}

// countVisibleKeypoints counts visibility values (offsets 2, 5, 8, ...) above zero.
func countVisibleKeypoints(v any) (int, error) {
	list, ok := v.([]any)
	if !ok {
		return 0, fmt.Errorf("%w: keypoints must be a list, found %s", ErrInvalidValue, jsonKind(v))
	}
	visible := 0
	for i := 2; i < len(list); i += 3 {
		f, err := toFloat(list[i])
		if err != nil {
			return 0, err
		}
		if f > 0 {
			visible++
		}
	}
	return visible, nil
}
