package coco_test

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	"detconv/internal/coco"
	"detconv/internal/testsupport"
)

func TestExtractAnnotationsShapes(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		shape coco.Shape
		count int
	}{
		{name: "list", doc: `[{"image_id":1},{"image_id":2}]`, shape: coco.ShapeList, count: 2},
		{name: "empty list", doc: `[]`, shape: coco.ShapeList, count: 0},
		{name: "annotations object", doc: `{"images":[],"annotations":[{"image_id":1}]}`, shape: coco.ShapeAnnotations, count: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := coco.DecodePredictions(strings.NewReader(tc.doc))
			if err != nil {
				t.Fatalf("DecodePredictions: %v", err)
			}
			recorder, logger := testsupport.NewLogRecorder()
			records, shape, err := coco.ExtractAnnotations(doc, logger)
			if err != nil {
				t.Fatalf("ExtractAnnotations: %v", err)
			}
			if shape != tc.shape || len(records) != tc.count {
				t.Fatalf("got shape %s with %d records, want %s with %d", shape, len(records), tc.shape, tc.count)
			}
			if infos := recorder.AtLevel(slog.LevelInfo); len(infos) != 1 {
				t.Fatalf("expected one shape diagnostic, got %+v", infos)
			}
		})
	}
}

func TestExtractAnnotationsRejectsMalformedShapes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind string
	}{
		{name: "number", doc: `42`, kind: "number"},
		{name: "string", doc: `"predictions"`, kind: "string"},
		{name: "null", doc: `null`, kind: "null"},
		{name: "object without annotations", doc: `{"images":[]}`, kind: "object"},
		{name: "annotations not a list", doc: `{"annotations":{"0":{}}}`, kind: "object"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := coco.DecodePredictions(strings.NewReader(tc.doc))
			if err != nil {
				t.Fatalf("DecodePredictions: %v", err)
			}
			records, _, err := coco.ExtractAnnotations(doc, nil)
			if !errors.Is(err, coco.ErrMalformedInput) {
				t.Fatalf("expected ErrMalformedInput, got %v", err)
			}
			var malformed *coco.MalformedInputError
			if !errors.As(err, &malformed) || malformed.Kind != tc.kind {
				t.Fatalf("expected kind %q, got %#v", tc.kind, err)
			}
			if records != nil {
				t.Fatalf("no records may be returned on failure, got %v", records)
			}
		})
	}
}

func TestDecodePredictionsRejectsBrokenJSON(t *testing.T) {
	for _, input := range []string{``, `[{"image_id":1}`, `[] []`, `{"annotations":[]} x`} {
		if _, err := coco.DecodePredictions(strings.NewReader(input)); err == nil {
			t.Fatalf("expected decode error for %q", input)
		}
	}
}
