package config

const (
	defaultScoreThreshold = 0.0
	defaultCategoryMatch  = CategoryMatchExact
	defaultHistoryPath    = "~/.local/share/detconv/history.db"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Category match modes accepted by convert.category_match.
const (
	CategoryMatchExact = "exact"
	CategoryMatchFold  = "fold"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Convert: Convert{
			ScoreThreshold: defaultScoreThreshold,
			CategoryMatch:  defaultCategoryMatch,
		},
		History: History{
			Path: defaultHistoryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
