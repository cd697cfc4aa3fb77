package coco

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"golang.org/x/text/cases"

	"detconv/internal/logging"
)

// MatchMode controls how category names from predictions are compared with
// ground-truth names.
type MatchMode string

const (
	// MatchExact compares names byte for byte.
	MatchExact MatchMode = "exact"
	// MatchFold compares names after Unicode case folding.
	MatchFold MatchMode = "fold"
)

// ParseMatchMode validates a category match mode name.
func ParseMatchMode(value string) (MatchMode, error) {
	switch MatchMode(value) {
	case "", MatchExact:
		return MatchExact, nil
	case MatchFold:
		return MatchFold, nil
	default:
		return "", fmt.Errorf("unsupported category match mode %q", value)
	}
}

// Category is one entry of a ground-truth document's category list.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GroundTruth holds the parts of a COCO ground-truth document the converter
// reads. Images and annotations are ignored. Category entries are kept as
// decoded so that BuildCategoryMapping can coerce their ids.
type GroundTruth struct {
	Categories []any `json:"categories"`
}

// DecodeGroundTruth parses a ground-truth document. A missing or null
// "categories" entry yields an empty list.
func DecodeGroundTruth(r io.Reader) (GroundTruth, error) {
	var gt GroundTruth
	if err := decodeDocument(r, &gt, true); err != nil {
		return GroundTruth{}, fmt.Errorf("decode ground truth: %w", err)
	}
	return gt, nil
}

// CategoryMapping resolves category names to ids. It is immutable once built.
type CategoryMapping struct {
	mode  MatchMode
	ids   map[string]int64
	names map[string]string
}

// BuildCategoryMapping indexes the ground-truth categories by name. When a
// name repeats the later entry wins and a warning is logged. Ids go through
// the same integer coercion as prediction fields, so 3.0 and "3" both
// resolve to 3. Entries without a string name or an integral id are skipped
// with a warning.
func BuildCategoryMapping(gt GroundTruth, mode MatchMode, logger *slog.Logger) CategoryMapping {
	logger = logging.NewComponentLogger(logger, "categories")
	if mode == "" {
		mode = MatchExact
	}

	mapping := CategoryMapping{
		mode:  mode,
		ids:   make(map[string]int64, len(gt.Categories)),
		names: make(map[string]string, len(gt.Categories)),
	}
	for idx, entry := range gt.Categories {
		cat, err := categoryEntry(entry)
		if err != nil {
			logging.WarnWithContext(logger, "skipping ground-truth category entry", "invalid_category_entry",
				logging.Int(logging.FieldIndex, idx),
				logging.Error(err),
				logging.String(logging.FieldImpact, "predictions naming this category are dropped as unknown"),
				logging.String(logging.FieldErrorHint, "give every category a string name and an integer id"),
			)
			continue
		}
		key := mapping.key(cat.Name)
		if prev, ok := mapping.ids[key]; ok {
			logging.WarnWithContext(logger, "duplicate category name in ground truth; later entry wins", "duplicate_category",
				logging.String(logging.FieldCategory, cat.Name),
				logging.Int64("previous_id", prev),
				logging.Int64("category_id", cat.ID),
				logging.String(logging.FieldImpact, "predictions naming this category resolve to the later id"),
				logging.String(logging.FieldErrorHint, "make category names unique in the ground-truth file"),
			)
		}
		mapping.ids[key] = cat.ID
		mapping.names[key] = cat.Name
	}

	logger.Info("loaded categories from ground truth",
		logging.Int(logging.FieldCount, len(mapping.ids)),
		logging.String("match_mode", string(mode)),
	)
	return mapping
}

func categoryEntry(entry any) (Category, error) {
	obj, ok := entry.(map[string]any)
	if !ok {
		return Category{}, fmt.Errorf("%w: category entry is %s, not an object", ErrInvalidValue, jsonKind(entry))
	}
	name, ok := obj["name"].(string)
	if !ok {
		return Category{}, fmt.Errorf("%w: category name is %s, not a string", ErrInvalidValue, jsonKind(obj["name"]))
	}
	id, err := toInt(obj["id"])
	if err != nil {
		return Category{}, fmt.Errorf("category %q id: %w", name, err)
	}
	return Category{ID: id, Name: name}, nil
}

func (m CategoryMapping) key(name string) string {
	if m.mode == MatchFold {
		return cases.Fold().String(name)
	}
	return name
}

// Lookup returns the id registered for name.
func (m CategoryMapping) Lookup(name string) (int64, bool) {
	id, ok := m.ids[m.key(name)]
	return id, ok
}

// Len reports the number of distinct category names.
func (m CategoryMapping) Len() int {
	return len(m.ids)
}

// Mode reports the match mode the mapping was built with.
func (m CategoryMapping) Mode() MatchMode {
	return m.mode
}

// Categories returns the resolved entries sorted by id, then name.
func (m CategoryMapping) Categories() []Category {
	out := make([]Category, 0, len(m.ids))
	for key, id := range m.ids {
		out = append(out, Category{ID: id, Name: m.names[key]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}
