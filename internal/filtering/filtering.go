// Package filtering holds the hard gates a profile must pass before it is matched.
package filtering

import (
	"github.com/spigell/talent-scout/internal/linkedin"
	"go.uber.org/zap"
)

// Filter represents a single gate applied to an extracted profile.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Check(p *linkedin.Profile) Decision
}

// Decision is the outcome of a gate.
type Decision struct {
	Pass   bool
	Filter string
	Reason string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run applies the enabled filters in order. The first rejection wins.
func Run(steps []Filter, p *linkedin.Profile) Decision {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}

		decision := step.Check(p)
		decision.Filter = step.Name()
		if !decision.Pass {
			return decision
		}
	}

	return Decision{Pass: true}
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// LogStatuses writes one entry per filter.
func LogStatuses(logger *zap.Logger, steps []Filter) {
	for _, status := range Describe(steps) {
		fields := []zap.Field{
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
		}
		if status.Reason != "" {
			fields = append(fields, zap.String("reason", status.Reason))
		}
		for key, value := range status.Details {
			fields = append(fields, zap.String(key, value))
		}
		logger.Info("filter configured", fields...)
	}
}
