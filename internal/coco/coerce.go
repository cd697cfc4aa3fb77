package coco

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// toFloat accepts JSON numbers, Go numeric types, and numeric strings.
// Booleans, containers, and non-finite values are rejected.
func toFloat(v any) (float64, error) {
	var (
		f   float64
		err error
	)
	switch x := v.(type) {
	case json.Number:
		f, err = x.Float64()
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
	default:
		return 0, fmt.Errorf("%w: %s is not numeric", ErrInvalidValue, jsonKind(v))
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not numeric", ErrInvalidValue, fmt.Sprint(v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v is not finite", ErrInvalidValue, v)
	}
	return f, nil
}

// toInt accepts integers, integral floats, and strings holding either.
func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
			return i, nil
		}
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidValue, v)
	}
	return int64(f), nil
}

// roundTenth rounds to one decimal place, half to even on the exact binary
// value. 12.345 is stored as 12.3449999... and becomes 12.3; 0.25 is exact
// and becomes 0.2.
func roundTenth(v float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return rounded
}
