package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"detconv/internal/coco"
	"detconv/internal/convert"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Status", statusError, "failed", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Status:", "[ERROR] failed")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Status", statusOK, "done", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestShouldColorizeNonTerminal(t *testing.T) {
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffers are never terminals")
	}
}

func TestPrintConvertSummary(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	summary := convert.Summary{
		RunID:      "run-1",
		OutputPath: "/tmp/results.json",
		Shape:      coco.ShapeList,
		Written:    true,
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Report: coco.Report{
			Total:       4,
			Kept:        2,
			Dropped:     map[coco.DropReason]int{coco.ReasonMissingBBox: 1, coco.ReasonBelowThreshold: 1},
			PerCategory: map[int64]int{7: 1, 3: 1},
		},
	}

	var buf bytes.Buffer
	printConvertSummary(&buf, summary, nil, false)
	out := buf.String()
	for _, needle := range []string{"[OK] Results written", "run-1", "1.5s", "dropped: below_threshold", "dropped: missing_bbox"} {
		requireContains(t, out, needle)
	}
	requireContains(t, strings.ToUpper(out), "CATEGORY ID")
	if strings.Index(out, "below_threshold") > strings.Index(out, "missing_bbox") {
		t.Fatal("drop reasons must be sorted")
	}

	buf.Reset()
	printConvertSummary(&buf, convert.Summary{RunID: "run-2"}, errors.New("boom"), false)
	requireContains(t, buf.String(), "[ERROR] boom")
	if strings.Contains(strings.ToUpper(buf.String()), "OUTCOME") {
		t.Fatal("failed runs without records must not render a table")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{coco.ErrNoResults, exitEmpty},
		{fmt.Errorf("wrapped: %w", coco.ErrNoResults), exitEmpty},
		{errors.New("boom"), exitFailure},
		{&coco.MalformedInputError{Kind: "number"}, exitFailure},
	}
	for _, tc := range tests {
		if got := exitCode(tc.err); got != tc.want {
			t.Errorf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
