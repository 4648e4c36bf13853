package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(c *Config)
		valid  bool
	}{
		{name: "defaults", mutate: func(*Config) {}, valid: true},
		{name: "threshold above scale", mutate: func(c *Config) { c.MatchThreshold = 10.5 }},
		{name: "negative threshold", mutate: func(c *Config) { c.MatchThreshold = -1 }},
		{name: "negative experience", mutate: func(c *Config) { c.MinExperience = -0.5 }},
		{name: "max delay below min", mutate: func(c *Config) { c.DelayMax = time.Second }},
		{name: "zero delays", mutate: func(c *Config) { c.DelayMin, c.DelayMax = 0, 0 }, valid: true},
		{name: "negative retries", mutate: func(c *Config) { c.MaxRetriesPerProfile = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 7.0, cfg.MatchThreshold)
	assert.Equal(t, 5*time.Second, cfg.DelayMin)
	assert.Equal(t, 10*time.Second, cfg.DelayMax)
	assert.Equal(t, 1, cfg.MaxRetriesPerProfile)
}
