package filtering

import (
	"fmt"
	"strconv"

	"github.com/spigell/talent-scout/internal/linkedin"
)

const ExperienceName = "experience"

type experienceFilter struct {
	min      float64
	disabled bool
	reason   string
}

// NewExperience rejects profiles with fewer total years of experience than min.
func NewExperience(min float64) Filter {
	return &experienceFilter{min: min}
}

func (f *experienceFilter) Name() string { return ExperienceName }

func (f *experienceFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *experienceFilter) IsEnabled() bool { return !f.disabled }

func (f *experienceFilter) Check(p *linkedin.Profile) Decision {
	if p.TotalYearsExperience < f.min {
		return Decision{
			Reason: fmt.Sprintf("%.1f years of experience is below the minimum of %.1f", p.TotalYearsExperience, f.min),
		}
	}
	return Decision{Pass: true}
}

func (f *experienceFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"min_years": strconv.FormatFloat(f.min, 'f', -1, 64)},
	}
}
