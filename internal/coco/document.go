package coco

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"detconv/internal/logging"
)

// Shape names the accepted top-level layouts of a prediction document.
type Shape string

const (
	// ShapeList is a bare JSON array of records.
	ShapeList Shape = "list"
	// ShapeAnnotations is an object whose "annotations" key holds the records.
	ShapeAnnotations Shape = "annotations"
)

// DecodePredictions parses a prediction document, keeping numbers as
// json.Number so passthrough fields keep their exact spelling.
func DecodePredictions(r io.Reader) (any, error) {
	var doc any
	if err := decodeDocument(r, &doc, true); err != nil {
		return nil, fmt.Errorf("decode predictions: %w", err)
	}
	return doc, nil
}

func decodeDocument(r io.Reader, v any, useNumber bool) error {
	dec := json.NewDecoder(r)
	if useNumber {
		dec.UseNumber()
	}
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty document")
		}
		return err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after top-level value")
	}
	return nil
}

// ExtractAnnotations resolves the top-level shape of a decoded prediction
// document into its record list. Failure here is fatal for the run.
func ExtractAnnotations(doc any, logger *slog.Logger) ([]any, Shape, error) {
	logger = logging.NewComponentLogger(logger, "predictions")

	switch top := doc.(type) {
	case []any:
		logger.Info("prediction document is a list of annotations", logging.Int(logging.FieldCount, len(top)))
		return top, ShapeList, nil
	case map[string]any:
		raw, ok := top["annotations"]
		if !ok {
			return nil, "", &MalformedInputError{Kind: "object", Detail: `object has no "annotations" key`}
		}
		anns, ok := raw.([]any)
		if !ok {
			return nil, "", &MalformedInputError{Kind: jsonKind(raw), Detail: `"annotations" must be a list`}
		}
		logger.Info("extracted annotations from prediction document", logging.Int(logging.FieldCount, len(anns)))
		return anns, ShapeAnnotations, nil
	default:
		return nil, "", &MalformedInputError{Kind: jsonKind(doc), Detail: `expected a list or an object with "annotations"`}
	}
}
