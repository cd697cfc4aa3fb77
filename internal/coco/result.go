package coco

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Float always encodes with a decimal point or an exponent, so 10 is "10.0".
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: %v cannot be encoded", ErrInvalidValue, v)
	}
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.AppendFloat(nil, v, 'e', -1, 64), nil
	}
	b := strconv.AppendFloat(nil, v, 'f', -1, 64)
	if !strings.ContainsRune(string(b), '.') {
		b = append(b, '.', '0')
	}
	return b, nil
}

// Passthrough wraps a value copied unchanged from the prediction record. A
// nil *Passthrough is omitted from the output; a Passthrough holding nil
// encodes as null.
type Passthrough struct {
	Value any
}

func (p Passthrough) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Value)
}

// ResultRecord is one detection in the COCO results format.
type ResultRecord struct {
	ImageID      any          `json:"image_id"`
	CategoryID   int64        `json:"category_id"`
	BBox         [4]Float     `json:"bbox"`
	Score        Float        `json:"score"`
	Segmentation *Passthrough `json:"segmentation,omitempty"`
	Keypoints    *Passthrough `json:"keypoints,omitempty"`
	NumKeypoints *int         `json:"num_keypoints,omitempty"`
}

// EncodeResults writes records as a JSON array. An empty slice encodes as [].
func EncodeResults(w io.Writer, records []ResultRecord, indent bool) error {
	if records == nil {
		records = []ResultRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}
