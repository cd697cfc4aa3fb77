package coco_test

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"detconv/internal/coco"
	"detconv/internal/testsupport"
)

func TestBuildCategoryMapping(t *testing.T) {
	gt, err := coco.DecodeGroundTruth(strings.NewReader(
		`{"images":[{"id":1}],"categories":[{"name":"cat","id":3,"supercategory":"animal"},{"name":"dog","id":4}]}`))
	if err != nil {
		t.Fatalf("DecodeGroundTruth: %v", err)
	}
	recorder, logger := testsupport.NewLogRecorder()

	mapping := coco.BuildCategoryMapping(gt, coco.MatchExact, logger)

	if id, ok := mapping.Lookup("cat"); !ok || id != 3 {
		t.Fatalf("Lookup(cat) = %d, %v", id, ok)
	}
	if _, ok := mapping.Lookup("Cat"); ok {
		t.Fatal("exact matching must be case sensitive")
	}
	if mapping.Len() != 2 {
		t.Fatalf("Len = %d", mapping.Len())
	}

	infos := recorder.AtLevel(slog.LevelInfo)
	if len(infos) != 1 || infos[0].Attrs["count"] != int64(2) {
		t.Fatalf("expected one count diagnostic, got %+v", infos)
	}
}

func TestBuildCategoryMappingCoercesIDs(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "integer", doc: `{"categories":[{"name":"cat","id":3}]}`},
		{name: "integral float", doc: `{"categories":[{"name":"cat","id":3.0}]}`},
		{name: "integer string", doc: `{"categories":[{"name":"cat","id":"3"}]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gt, err := coco.DecodeGroundTruth(strings.NewReader(tc.doc))
			if err != nil {
				t.Fatalf("DecodeGroundTruth: %v", err)
			}
			recorder, logger := testsupport.NewLogRecorder()
			mapping := coco.BuildCategoryMapping(gt, coco.MatchExact, logger)
			if id, ok := mapping.Lookup("cat"); !ok || id != 3 {
				t.Fatalf("Lookup(cat) = %d, %v", id, ok)
			}
			if warns := recorder.AtLevel(slog.LevelWarn); len(warns) != 0 {
				t.Fatalf("expected no warnings, got %+v", warns)
			}
		})
	}
}

func TestBuildCategoryMappingSkipsInvalidEntries(t *testing.T) {
	gt, err := coco.DecodeGroundTruth(strings.NewReader(
		`{"categories":[{"name":"cat","id":"x"},{"name":"dog","id":4},{"name":"car","id":2.5},{"name":7,"id":8},{"id":9},"bus"]}`))
	if err != nil {
		t.Fatalf("DecodeGroundTruth: %v", err)
	}
	recorder, logger := testsupport.NewLogRecorder()

	mapping := coco.BuildCategoryMapping(gt, coco.MatchExact, logger)

	want := []coco.Category{{ID: 4, Name: "dog"}}
	if diff := cmp.Diff(want, mapping.Categories()); diff != "" {
		t.Fatalf("Categories (-want +got):\n%s", diff)
	}
	warns := recorder.AtLevel(slog.LevelWarn)
	var indexes []any
	for _, w := range warns {
		indexes = append(indexes, w.Attrs["index"])
	}
	if diff := cmp.Diff([]any{int64(0), int64(2), int64(3), int64(4), int64(5)}, indexes); diff != "" {
		t.Fatalf("warned indexes (-want +got):\n%s", diff)
	}
}

func TestBuildCategoryMappingMissingCategories(t *testing.T) {
	for _, input := range []string{`{}`, `{"categories":null}`, `{"categories":[]}`} {
		gt, err := coco.DecodeGroundTruth(strings.NewReader(input))
		if err != nil {
			t.Fatalf("DecodeGroundTruth(%s): %v", input, err)
		}
		if mapping := coco.BuildCategoryMapping(gt, coco.MatchExact, nil); mapping.Len() != 0 {
			t.Fatalf("expected empty mapping for %s, got %d", input, mapping.Len())
		}
	}
}

func TestBuildCategoryMappingDuplicateLastWins(t *testing.T) {
	gt, err := coco.DecodeGroundTruth(strings.NewReader(
		`{"categories":[{"name":"cat","id":3},{"name":"cat","id":8}]}`))
	if err != nil {
		t.Fatalf("DecodeGroundTruth: %v", err)
	}
	recorder, logger := testsupport.NewLogRecorder()

	mapping := coco.BuildCategoryMapping(gt, coco.MatchExact, logger)

	if id, _ := mapping.Lookup("cat"); id != 8 {
		t.Fatalf("expected later id to win, got %d", id)
	}
	warns := recorder.AtLevel(slog.LevelWarn)
	if len(warns) != 1 || warns[0].Attrs["previous_id"] != int64(3) {
		t.Fatalf("expected one duplicate warning, got %+v", warns)
	}
}

func TestBuildCategoryMappingFoldMode(t *testing.T) {
	gt, err := coco.DecodeGroundTruth(strings.NewReader(
		`{"categories":[{"name":"Traffic Light","id":10},{"name":"STRASSE","id":11}]}`))
	if err != nil {
		t.Fatalf("DecodeGroundTruth: %v", err)
	}
	mapping := coco.BuildCategoryMapping(gt, coco.MatchFold, nil)

	if id, ok := mapping.Lookup("traffic light"); !ok || id != 10 {
		t.Fatalf("Lookup(traffic light) = %d, %v", id, ok)
	}
	if id, ok := mapping.Lookup("Strasse"); !ok || id != 11 {
		t.Fatalf("Lookup(Strasse) = %d, %v", id, ok)
	}

	want := []coco.Category{{ID: 10, Name: "Traffic Light"}, {ID: 11, Name: "STRASSE"}}
	if diff := cmp.Diff(want, mapping.Categories()); diff != "" {
		t.Fatalf("Categories (-want +got):\n%s", diff)
	}
}

func TestDecodeGroundTruthErrors(t *testing.T) {
	for _, input := range []string{`[]`, `{"categories":{"name":"cat","id":3}}`, `{"categories":[]} {}`, `{`} {
		if _, err := coco.DecodeGroundTruth(strings.NewReader(input)); err == nil {
			t.Fatalf("expected error for %s", input)
		}
	}
}

func TestParseMatchMode(t *testing.T) {
	for input, want := range map[string]coco.MatchMode{"": coco.MatchExact, "exact": coco.MatchExact, "fold": coco.MatchFold} {
		got, err := coco.ParseMatchMode(input)
		if err != nil || got != want {
			t.Fatalf("ParseMatchMode(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := coco.ParseMatchMode("fuzzy"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
