package pipeline

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultMatchThreshold = 7
	DefaultDelayMin       = 5 * time.Second
	DefaultDelayMax       = 10 * time.Second
	DefaultMaxRetries     = 1
)

// Config holds the tunables of a pipeline. It is immutable once the pipeline is built.
type Config struct {
	// MatchThreshold is the minimum score for a profile to be recorded as matched.
	MatchThreshold float64 `mapstructure:"match-threshold" validate:"gte=0,lte=10"`
	// MinExperience is the experience gate for new batches. Resumed batches keep
	// the value they were created with.
	MinExperience float64       `mapstructure:"min-experience" validate:"gte=0"`
	DelayMin      time.Duration `mapstructure:"delay-min" validate:"gte=0"`
	DelayMax      time.Duration `mapstructure:"delay-max" validate:"gtefield=DelayMin"`
	// MaxRetriesPerProfile is the number of extra fetch attempts per profile.
	MaxRetriesPerProfile int `mapstructure:"max-retries-per-profile" validate:"gte=0"`
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		MatchThreshold:       DefaultMatchThreshold,
		DelayMin:             DefaultDelayMin,
		DelayMax:             DefaultDelayMax,
		MaxRetriesPerProfile: DefaultMaxRetries,
	}
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid pipeline config: %w", err)
	}
	return nil
}
