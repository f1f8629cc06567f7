package hints

import "time"

// Config holds hint generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
	// Timeout bounds one Request command.
	Timeout time.Duration
}

// DefaultConfig returns the defaults for hint generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   400,
		Temperature: 0.3,
		Timeout:     45 * time.Second,
	}
}
