package testsupport

import (
	"path/filepath"
	"testing"

	"detconv/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose paths live under a per-test temp
// directory. It applies any provided options after the defaults.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithHistory enables the run ledger on the test config.
func WithHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = true
	}
}

// WithScoreThreshold overrides the default score threshold.
func WithScoreThreshold(threshold float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Convert.ScoreThreshold = threshold
	}
}

// WithCategoryMatch overrides the category match mode.
func WithCategoryMatch(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Convert.CategoryMatch = mode
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.History.Path))
}
