package config

import (
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConvert(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateConvert() error {
	if math.IsNaN(c.Convert.ScoreThreshold) || math.IsInf(c.Convert.ScoreThreshold, 0) {
		return fmt.Errorf("convert.score_threshold must be a finite number")
	}
	if err := ValidateCategoryMatch(c.Convert.CategoryMatch); err != nil {
		return fmt.Errorf("convert.category_match: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// ValidateCategoryMatch reports whether mode names a supported category match mode.
func ValidateCategoryMatch(mode string) error {
	switch mode {
	case CategoryMatchExact, CategoryMatchFold:
		return nil
	default:
		return fmt.Errorf("unsupported value %q (want %s or %s)", mode, CategoryMatchExact, CategoryMatchFold)
	}
}
