package history

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the outcome of a conversion run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusEmpty     Status = "empty"
	StatusFailed    Status = "failed"
)

// Run is one ledger row.
type Run struct {
	ID              string         `json:"id"`
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      time.Time      `json:"finished_at"`
	Status          Status         `json:"status"`
	PredictionsPath string         `json:"predictions_path"`
	GroundTruthPath string         `json:"ground_truth_path"`
	OutputPath      string         `json:"output_path,omitempty"`
	ScoreThreshold  float64        `json:"score_threshold"`
	CategoryMatch   string         `json:"category_match"`
	Shape           string         `json:"shape,omitempty"`
	Total           int            `json:"total"`
	Kept            int            `json:"kept"`
	Dropped         int            `json:"dropped"`
	DropReasons     map[string]int `json:"drop_reasons,omitempty"`
	OutputSHA256    string         `json:"output_sha256,omitempty"`
	Error           string         `json:"error,omitempty"`
}

// Duration reports how long the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func encodeReasons(reasons map[string]int) (string, error) {
	if len(reasons) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(reasons)
	if err != nil {
		return "", fmt.Errorf("encode drop reasons: %w", err)
	}
	return string(data), nil
}

func decodeReasons(raw string) (map[string]int, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	var reasons map[string]int
	if err := json.Unmarshal([]byte(raw), &reasons); err != nil {
		return nil, fmt.Errorf("decode drop reasons: %w", err)
	}
	return reasons, nil
}
