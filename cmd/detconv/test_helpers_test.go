package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"detconv/internal/config"
	"detconv/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	baseDir    string
	configPath string
	predPath   string
	gtPath     string
	outPath    string
}

const cliPredictions = `[
	{"image_id": 1, "category": "cat", "bbox": [10, 20, 30, 40], "score": 0.9},
	{"image_id": 2, "category": "zebra", "bbox": [0, 0, 1, 1], "score": 0.8},
	{"image_id": 3, "category_id": 1, "x1": 0, "y1": 0, "x2": 5, "y2": 5, "score": 0.2}
]`

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("DETCONV_LOG_LEVEL", "")
	t.Setenv("DETCONV_SCORE_THRESHOLD", "")
	t.Chdir(base)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	env := &cliTestEnv{
		cfg:        cfg,
		baseDir:    base,
		configPath: configPath,
		predPath:   filepath.Join(base, "pred.json"),
		gtPath:     filepath.Join(base, "gt.json"),
		outPath:    filepath.Join(base, "out", "results.json"),
	}
	testsupport.WriteFile(t, env.predPath, cliPredictions)
	testsupport.WriteJSON(t, env.gtPath, testsupport.GroundTruth(map[string]int{"person": 1, "cat": 3}))
	return env
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[convert]
score_threshold = %.4f
category_match = %q
indent = %t

[history]
enabled = %t
path = %q

[logging]
format = "console"
level = "warn"
`, cfg.Convert.ScoreThreshold, cfg.Convert.CategoryMatch, cfg.Convert.Indent, cfg.History.Enabled, cfg.History.Path)
	testsupport.WriteFile(t, path, content)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (env *cliTestEnv) convertArgs(extra ...string) []string {
	args := []string{"convert", "--pred", env.predPath, "--gt", env.gtPath, "--out", env.outPath}
	return append(args, extra...)
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n%s", needle, haystack)
	}
}
