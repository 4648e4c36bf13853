package filtering

import "github.com/spigell/talent-scout/internal/linkedin"

const OpenToWorkName = "open_to_work"

type openToWorkFilter struct {
	disabled bool
	reason   string
}

// NewOpenToWork keeps only candidates that advertise being open to work.
// It starts disabled unless required is set.
func NewOpenToWork(required bool) Filter {
	f := &openToWorkFilter{}
	if !required {
		f.Disable("not required by configuration")
	}
	return f
}

func (f *openToWorkFilter) Name() string { return OpenToWorkName }

func (f *openToWorkFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *openToWorkFilter) IsEnabled() bool { return !f.disabled }

func (f *openToWorkFilter) Check(p *linkedin.Profile) Decision {
	if !p.OpenToWork {
		return Decision{Reason: "candidate is not open to work"}
	}
	return Decision{Pass: true}
}

func (f *openToWorkFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
