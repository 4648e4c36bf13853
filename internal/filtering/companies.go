package filtering

import (
	"strings"

	"github.com/spigell/talent-scout/internal/linkedin"
)

const CompaniesName = "companies"

type companiesFilter struct {
	companies []string
	disabled  bool
	reason    string
}

// NewExcludedCompanies rejects candidates whose most recent role is at one of the given companies.
func NewExcludedCompanies(companies []string) Filter {
	f := &companiesFilter{companies: linkedin.UniqueFold(companies)}
	if len(f.companies) == 0 {
		f.Disable("no companies configured")
	}
	return f
}

func (f *companiesFilter) Name() string { return CompaniesName }

func (f *companiesFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *companiesFilter) IsEnabled() bool { return !f.disabled }

func (f *companiesFilter) Check(p *linkedin.Profile) Decision {
	if len(p.Experience) == 0 {
		return Decision{Pass: true}
	}

	current := strings.TrimSpace(p.Experience[0].Company)
	for _, company := range f.companies {
		if strings.EqualFold(current, company) {
			return Decision{Reason: "currently works at excluded company " + current}
		}
	}
	return Decision{Pass: true}
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
